package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/domain/service"
	"MarketRadar/internal/services/analytics"
	"MarketRadar/internal/services/features"
	"MarketRadar/internal/services/normalize"
	"MarketRadar/internal/services/scoring"
	"MarketRadar/pkg/logger"
)

// IngestConfig is the immutable per-pass configuration.
type IngestConfig struct {
	Watchlist        []string
	PolymarketQuery  string
	PolymarketLimit  int
	AnomalyThreshold float64
	RefitHistory     int
}

// Ingestor drives one full pipeline pass: fetch, normalize, extract
// features, score, persist, evaluate the alert rule. Failures in one
// instrument never abort the rest of the pass.
type Ingestor struct {
	cfg       IngestConfig
	bars      service.BarsProvider
	options   service.OptionsProvider
	events    service.EventsProvider
	altData   service.AltDataProvider
	store     repository.SignalStore
	alerts    repository.AlertStore
	publisher repository.AlertPublisher
	metrics   repository.Metrics
	engine    *scoring.Engine
	logger    *logger.Logger
}

// NewIngestor wires an ingestor from its collaborators.
func NewIngestor(
	cfg IngestConfig,
	bars service.BarsProvider,
	options service.OptionsProvider,
	events service.EventsProvider,
	altData service.AltDataProvider,
	store repository.SignalStore,
	alerts repository.AlertStore,
	publisher repository.AlertPublisher,
	metrics repository.Metrics,
	engine *scoring.Engine,
	log *logger.Logger,
) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		bars:      bars,
		options:   options,
		events:    events,
		altData:   altData,
		store:     store,
		alerts:    alerts,
		publisher: publisher,
		metrics:   metrics,
		engine:    engine,
		logger:    log,
	}
}

// RunOnce executes a complete ingestion pass across every source.
func (in *Ingestor) RunOnce(ctx context.Context) {
	start := time.Now()
	in.IngestStocksAndOptions(ctx)
	in.IngestPolymarket(ctx)
	in.IngestAltData(ctx)
	in.metrics.RecordLatency("ingest_pass", time.Since(start).Seconds())
}

// IngestStocksAndOptions processes each watchlist symbol: a price
// signal from recent bars and an options signal from the nearest
// expiry chain.
func (in *Ingestor) IngestStocksAndOptions(ctx context.Context) {
	for _, sym := range in.cfg.Watchlist {
		if ctx.Err() != nil {
			return
		}

		bars := in.bars.FetchPriceBars(ctx, sym)
		sf := features.StockFeatures(bars)
		in.scoreAndPersist(ctx, normalize.Stock(sym, bars), sf)

		snap := in.options.FetchOptionsSnapshot(ctx, sym)
		of := features.OptionsFeatures(snap)
		in.scoreAndPersist(ctx, normalize.Options(snap), of)
	}
}

// IngestPolymarket processes prediction-market events, one signal per
// flattened market row. Rows without a usable symbol are skipped.
func (in *Ingestor) IngestPolymarket(ctx context.Context) {
	events := in.events.FetchEvents(ctx, in.cfg.PolymarketQuery, in.cfg.PolymarketLimit)
	for _, ev := range events {
		for _, market := range normalize.FlattenEventMarkets(ev) {
			ns, ok := normalize.PolymarketMarket(market)
			if !ok {
				continue
			}
			in.scoreAndPersist(ctx, ns, nil)
		}
	}
}

// IngestAltData processes senate, house and insider disclosures. A
// disabled provider degrades to no-ops without error.
func (in *Ingestor) IngestAltData(ctx context.Context) {
	if !in.altData.Enabled() {
		in.logger.Info("alt-data provider disabled, skipping")
		return
	}

	batches := []struct {
		source models.Source
		kind   string
		rows   []map[string]interface{}
	}{
		{models.SourceSenate, "senate_trade", in.altData.FetchSenateTrades(ctx)},
		{models.SourceHouse, "house_trade", in.altData.FetchHouseTrades(ctx)},
		{models.SourceInsider, "insider_trade", in.altData.FetchInsiderTrades(ctx)},
	}

	for _, batch := range batches {
		for _, row := range batch.rows {
			ns, ok := normalize.AltRow(batch.source, batch.kind, row)
			if !ok {
				continue
			}
			in.scoreAndPersist(ctx, ns, nil)
		}
	}
}

// Refit retrains the anomaly model from the most recent persisted
// feature history.
func (in *Ingestor) Refit(ctx context.Context) error {
	feats, err := in.store.RecentFeatures(ctx, in.cfg.RefitHistory)
	if err != nil {
		in.metrics.RecordError("refit")
		return fmt.Errorf("load refit history: %w", err)
	}
	in.engine.FitAnomalyModel(feats)
	return nil
}

// scoreAndPersist runs the scoring engine on one normalized record,
// stores the result and evaluates the alert rule. Persistence errors
// are logged and counted, never propagated, so the pass stays total.
func (in *Ingestor) scoreAndPersist(ctx context.Context, ns models.NormalizedSignal, fv models.FeatureVector) {
	scored := in.engine.Score(ns.Source, ns.Kind, fv, ns.Notional)

	sig := &models.Signal{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Source:          ns.Source,
		Symbol:          ns.Symbol,
		Kind:            ns.Kind,
		Direction:       ns.Direction,
		Notional:        ns.Notional,
		Raw:             ns.Raw,
		Features:        scored.Features,
		AnomalyScore:    scored.AnomalyScore,
		ClassLabel:      scored.ClassLabel,
		ClassConfidence: scored.ClassConfidence,
	}

	if err := in.store.StoreSignal(ctx, sig); err != nil {
		in.metrics.RecordError("persist_signal")
		in.logger.Error("persist signal failed",
			logger.String("symbol", sig.Symbol),
			logger.String("source", string(sig.Source)),
			logger.Error(err))
		return
	}
	in.metrics.RecordSignal(string(sig.Source))
	in.metrics.RecordAnomalyScore(sig.Symbol, sig.AnomalyScore)

	in.maybeAlert(ctx, sig)
}

// maybeAlert applies the alert rule: high-trust labels always alert,
// everything else needs an anomaly score at or above the threshold.
func (in *Ingestor) maybeAlert(ctx context.Context, sig *models.Signal) {
	mustAlert := sig.ClassLabel == analytics.LabelInsiderTrade ||
		sig.ClassLabel == analytics.LabelCongressTrade

	if !mustAlert && sig.AnomalyScore < in.cfg.AnomalyThreshold {
		return
	}

	severity := "warn"
	if sig.AnomalyScore >= 0.9 || mustAlert {
		severity = "high"
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Symbol:    sig.Symbol,
		Severity:  severity,
		Title:     fmt.Sprintf("%s: %s (%s)", sig.Symbol, sig.ClassLabel, sig.Source),
		Body: fmt.Sprintf(
			"Kind = %s\nAnomaly Score = %.3f\nNotional = %.2f\nFeatures = %v\nDirection = %s\n",
			sig.Kind, sig.AnomalyScore, sig.Notional, sig.Features, sig.Direction),
		SignalIDs: []string{sig.ID},
	}

	if err := in.alerts.StoreAlert(ctx, alert); err != nil {
		in.metrics.RecordError("persist_alert")
		in.logger.Error("persist alert failed", logger.String("symbol", alert.Symbol), logger.Error(err))
		return
	}
	in.metrics.RecordAlert(severity)

	if err := in.publisher.PublishAlert(ctx, alert); err != nil {
		in.metrics.RecordError("publish_alert")
		in.logger.Warn("alert publish failed", logger.String("symbol", alert.Symbol), logger.Error(err))
	}
}
