package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/services/scoring"
	"MarketRadar/pkg/logger"
)

type memStore struct {
	signals []*models.Signal
	alerts  []*models.Alert
}

func (m *memStore) Init(context.Context) error { return nil }
func (m *memStore) StoreSignal(_ context.Context, s *models.Signal) error {
	m.signals = append(m.signals, s)
	return nil
}
func (m *memStore) ListSignals(_ context.Context, f repository.SignalFilter) ([]*models.Signal, error) {
	return m.signals, nil
}
func (m *memStore) RecentFeatures(_ context.Context, limit int) ([]models.FeatureVector, error) {
	out := make([]models.FeatureVector, 0, len(m.signals))
	for _, s := range m.signals {
		out = append(out, s.Features)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (m *memStore) Health(context.Context) error { return nil }
func (m *memStore) Close() error                 { return nil }
func (m *memStore) StoreAlert(_ context.Context, a *models.Alert) error {
	m.alerts = append(m.alerts, a)
	return nil
}
func (m *memStore) ListAlerts(_ context.Context, f repository.AlertFilter) ([]*models.Alert, error) {
	return m.alerts, nil
}

type stubBars struct{ bars []models.Bar }

func (s stubBars) FetchPriceBars(context.Context, string) []models.Bar { return s.bars }

type stubOptions struct{ snap models.OptionsSnapshot }

func (s stubOptions) FetchOptionsSnapshot(_ context.Context, symbol string) models.OptionsSnapshot {
	snap := s.snap
	snap.Symbol = symbol
	return snap
}

type stubEvents struct{ events []map[string]interface{} }

func (s stubEvents) FetchEvents(context.Context, string, int) []map[string]interface{} {
	return s.events
}

type stubAltData struct {
	enabled bool
	senate  []map[string]interface{}
	house   []map[string]interface{}
	insider []map[string]interface{}
}

func (s stubAltData) Enabled() bool { return s.enabled }
func (s stubAltData) FetchSenateTrades(context.Context) []map[string]interface{} {
	return s.senate
}
func (s stubAltData) FetchHouseTrades(context.Context) []map[string]interface{} {
	return s.house
}
func (s stubAltData) FetchInsiderTrades(context.Context) []map[string]interface{} {
	return s.insider
}

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string)               {}
func (nopMetrics) RecordAlert(string)                {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordAnomalyScore(string, float64) {}
func (nopMetrics) RecordBreakerState(string, int)    {}
func (nopMetrics) RecordLatency(string, float64)     {}

type nopPublisher struct{ published []*models.Alert }

func (p *nopPublisher) PublishAlert(_ context.Context, a *models.Alert) error {
	p.published = append(p.published, a)
	return nil
}
func (p *nopPublisher) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func flatBars(n int) []models.Bar {
	base := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{TS: base.Add(time.Duration(i) * time.Minute), Close: 100, Volume: 1000}
	}
	return bars
}

func newTestIngestor(t *testing.T, store *memStore, alt stubAltData, events stubEvents) (*Ingestor, *nopPublisher) {
	t.Helper()
	pub := &nopPublisher{}
	ing := NewIngestor(
		IngestConfig{
			Watchlist:        []string{"AAPL"},
			PolymarketQuery:  "election",
			PolymarketLimit:  25,
			AnomalyThreshold: 0.75,
			RefitHistory:     2000,
		},
		stubBars{bars: flatBars(30)},
		stubOptions{snap: models.OptionsSnapshot{HasOptions: true, CallVolume: 100, PutVolume: 50, CallOI: 1000, PutOI: 800}},
		events,
		alt,
		store, store, pub, nopMetrics{},
		scoring.NewEngine(testLogger(t)),
		testLogger(t),
	)
	return ing, pub
}

func TestStocksAndOptionsProduceTwoSignalsPerSymbol(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{}, stubEvents{})

	ing.IngestStocksAndOptions(context.Background())

	require.Len(t, store.signals, 2)
	assert.Equal(t, models.SourceStock, store.signals[0].Source)
	assert.Equal(t, "stock_move", store.signals[0].Kind)
	assert.Equal(t, models.SourceOptions, store.signals[1].Source)
	assert.InDelta(t, 150.0, store.signals[1].Notional, 1e-9, "options notional is total traded volume")
	for _, s := range store.signals {
		assert.Equal(t, "AAPL", s.Symbol)
		assert.NotEmpty(t, s.ID)
		assert.Contains(t, s.Features, "notional_log")
	}
}

func TestQuietMarketRaisesNoAlerts(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{}, stubEvents{})

	ing.IngestStocksAndOptions(context.Background())
	assert.Empty(t, store.alerts, "untrained model scores 0.0 and labels are ordinary")
}

func TestInsiderTradeAlwaysAlerts(t *testing.T) {
	store := &memStore{}
	ing, pub := newTestIngestor(t, store, stubAltData{
		enabled: true,
		insider: []map[string]interface{}{
			{"Ticker": "MSFT", "Transaction": "P-Purchase", "Value": 2_000_000.0},
		},
	}, stubEvents{})

	ing.IngestAltData(context.Background())

	require.Len(t, store.alerts, 1)
	alert := store.alerts[0]
	assert.Equal(t, "high", alert.Severity, "high-trust labels are high severity regardless of score")
	assert.Equal(t, "MSFT: insider_trade (INSIDER)", alert.Title)
	assert.True(t, strings.HasPrefix(alert.Body, "Kind = insider_trade\nAnomaly Score = 0.000\n"))
	assert.Contains(t, alert.Body, "Notional = 2000000.00\n")
	assert.Contains(t, alert.Body, "Direction = p-purchase\n")
	require.Len(t, store.signals, 1)
	assert.Equal(t, []string{store.signals[0].ID}, alert.SignalIDs)
	assert.Len(t, pub.published, 1, "alerts fan out to the publisher")
}

func TestSenateTradeDoesNotForceAlert(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{
		enabled: true,
		senate: []map[string]interface{}{
			{"Ticker": "NVDA", "Transaction": "Purchase", "Amount": "$1,001 - $15,000"},
		},
	}, stubEvents{})

	ing.IngestAltData(context.Background())

	require.Len(t, store.signals, 1)
	assert.Equal(t, "senate_trade", store.signals[0].ClassLabel)
	assert.Empty(t, store.alerts, "senate_trade is not a must-alert label and the score is below threshold")
}

func TestAltRowsWithBadTickersAreSkipped(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{
		enabled: true,
		senate: []map[string]interface{}{
			{"Ticker": "N/A", "Transaction": "Sale"},
			{"Transaction": "Sale"},
			{"Ticker": "TSLA", "Transaction": "Sale", "Amount": "$1,001 - $15,000"},
		},
	}, stubEvents{})

	ing.IngestAltData(context.Background())

	require.Len(t, store.signals, 1)
	assert.Equal(t, "TSLA", store.signals[0].Symbol)
}

func TestDisabledAltProviderIsSilentlySkipped(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{enabled: false,
		senate: []map[string]interface{}{{"Ticker": "XOM", "Transaction": "Sale"}},
	}, stubEvents{})

	ing.IngestAltData(context.Background())
	assert.Empty(t, store.signals)
}

func TestPolymarketFlattensEventsAndSkipsOrphans(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{}, stubEvents{
		events: []map[string]interface{}{
			{
				"title": "Election night",
				"markets": []interface{}{
					map[string]interface{}{"id": "1", "slug": "candidate-a-wins", "volume": 9000.0},
					map[string]interface{}{"question": "no identity"},
				},
			},
		},
	})

	ing.IngestPolymarket(context.Background())

	require.Len(t, store.signals, 1)
	sig := store.signals[0]
	assert.Equal(t, models.SourcePoly, sig.Source)
	assert.Equal(t, "CANDIDATE-A-WINS", sig.Symbol)
	assert.Equal(t, "polymarket_move", sig.ClassLabel)
	assert.InDelta(t, 9000.0, sig.Notional, 1e-9)
}

func TestRefitTrainsModelFromPersistedHistory(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 60; i++ {
		store.signals = append(store.signals, &models.Signal{
			Features: models.FeatureVector{"ret_1": 0.001, "notional_log": 10.0},
		})
	}
	ing, _ := newTestIngestor(t, store, stubAltData{}, stubEvents{})

	require.NoError(t, ing.Refit(context.Background()))
	// A trained model now produces nonzero scores on subsequent passes.
	ing.IngestStocksAndOptions(context.Background())
	require.Len(t, store.signals, 62)
	assert.Greater(t, store.signals[61].AnomalyScore, 0.0)
}

func TestRunOnceCoversAllSources(t *testing.T) {
	store := &memStore{}
	ing, _ := newTestIngestor(t, store, stubAltData{
		enabled: true,
		house: []map[string]interface{}{
			{"Ticker": "AMD", "Transaction": "Purchase", "Amount": "$1,001 - $15,000"},
		},
	}, stubEvents{
		events: []map[string]interface{}{
			{"markets": []interface{}{map[string]interface{}{"slug": "m1", "volume": 10.0}}},
		},
	})

	ing.RunOnce(context.Background())

	sources := map[models.Source]int{}
	for _, s := range store.signals {
		sources[s.Source]++
	}
	assert.Equal(t, 1, sources[models.SourceStock])
	assert.Equal(t, 1, sources[models.SourceOptions])
	assert.Equal(t, 1, sources[models.SourcePoly])
	assert.Equal(t, 1, sources[models.SourceHouse])
}
