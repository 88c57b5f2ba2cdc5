package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketRadar/internal/domain/models"
)

func TestParseAmountRangeMidpoint(t *testing.T) {
	assert.InDelta(t, 8000.5, ParseAmount("$1,001 - $15,000"), 1e-9)
	assert.InDelta(t, 75000.5, ParseAmount("$50,001 - $100,000"), 1e-9)
}

func TestParseAmountPlainValue(t *testing.T) {
	assert.InDelta(t, 2500.0, ParseAmount("$2,500"), 1e-9)
	assert.InDelta(t, 42.5, ParseAmount("42.5"), 1e-9)
}

func TestParseAmountSentinels(t *testing.T) {
	assert.Zero(t, ParseAmount(""))
	assert.Zero(t, ParseAmount("N/A"))
	assert.Zero(t, ParseAmount("not a number"))
	assert.Zero(t, ParseAmount("$abc - $def"))
}

func TestStockNormalization(t *testing.T) {
	bars := []models.Bar{
		{TS: time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC), Close: 100, Volume: 10},
		{TS: time.Date(2026, 8, 31, 14, 15, 0, 0, time.UTC), Close: 101, Volume: 12},
		{TS: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC), Close: 102, Volume: 9},
		{TS: time.Date(2026, 8, 31, 14, 45, 0, 0, time.UTC), Close: 103, Volume: 11},
	}
	ns := Stock("aapl", bars)

	assert.Equal(t, models.SourceStock, ns.Source)
	assert.Equal(t, "AAPL", ns.Symbol)
	assert.Equal(t, "stock_move", ns.Kind)
	assert.Equal(t, models.DirectionNone, ns.Direction)
	assert.Zero(t, ns.Notional)
	assert.Equal(t, 4, ns.Raw["rows"])
	assert.Len(t, ns.Raw["tail"], 3, "raw audit keeps only the last three bars")
}

func TestOptionsNormalizationNotionalIsTotalVolume(t *testing.T) {
	ns := Options(models.OptionsSnapshot{
		Symbol: "tsla", HasOptions: true, CallVolume: 300, PutVolume: 200,
	})
	assert.Equal(t, models.SourceOptions, ns.Source)
	assert.Equal(t, "TSLA", ns.Symbol)
	assert.Equal(t, "options_snapshot", ns.Kind)
	assert.InDelta(t, 500.0, ns.Notional, 1e-9)
}

func TestFlattenEventMarkets(t *testing.T) {
	event := map[string]interface{}{
		"title": "Some election",
		"markets": []interface{}{
			map[string]interface{}{
				"id": "123", "conditionId": "0xabc", "slug": "who-wins",
				"question": "Who wins?", "volume": "5000.5",
			},
			"not-a-map",
		},
	}
	rows := FlattenEventMarkets(event)
	require.Len(t, rows, 1)
	assert.Equal(t, "who-wins", rows[0]["slug"])
	assert.Equal(t, "0xabc", rows[0]["condition_id"])
}

func TestPolymarketMarketSymbolFallback(t *testing.T) {
	ns, ok := PolymarketMarket(map[string]interface{}{"slug": "fed-cut-september", "volume": 1234.0})
	require.True(t, ok)
	assert.Equal(t, "FED-CUT-SEPTEMBER", ns.Symbol)
	assert.InDelta(t, 1234.0, ns.Notional, 1e-9)

	ns, ok = PolymarketMarket(map[string]interface{}{"condition_id": "0xdeadbeef"})
	require.True(t, ok)
	assert.Equal(t, "0XDEADBEEF", ns.Symbol)

	ns, ok = PolymarketMarket(map[string]interface{}{"market_id": float64(991)})
	require.True(t, ok)
	assert.Equal(t, "991", ns.Symbol)
}

func TestPolymarketMarketWithoutIdentityIsSkipped(t *testing.T) {
	_, ok := PolymarketMarket(map[string]interface{}{"question": "orphan row"})
	assert.False(t, ok)
}

func TestPolymarketVolumeStringCoerces(t *testing.T) {
	ns, ok := PolymarketMarket(map[string]interface{}{"slug": "m", "volume": "250000.75"})
	require.True(t, ok)
	assert.InDelta(t, 250000.75, ns.Notional, 1e-9)
}

func TestAltRowSenateTrade(t *testing.T) {
	ns, ok := AltRow(models.SourceSenate, "senate_trade", map[string]interface{}{
		"Ticker":      "nvda",
		"Transaction": "Purchase",
		"Amount":      "$15,001 - $50,000",
		"Senator":     "A. Person",
	})
	require.True(t, ok)
	assert.Equal(t, models.SourceSenate, ns.Source)
	assert.Equal(t, "NVDA", ns.Symbol)
	assert.Equal(t, "purchase", ns.Direction)
	assert.InDelta(t, 32500.5, ns.Notional, 1e-9)
	assert.Equal(t, "A. Person", ns.Raw["Senator"])
}

func TestAltRowInsiderValueFallback(t *testing.T) {
	ns, ok := AltRow(models.SourceInsider, "insider_trade", map[string]interface{}{
		"Ticker":      "MSFT",
		"Transaction": "S-Sale",
		"Value":       125000.0,
	})
	require.True(t, ok)
	assert.Equal(t, "s-sale", ns.Direction)
	assert.InDelta(t, 125000.0, ns.Notional, 1e-9)
}

func TestAltRowSkipsUnusableTickers(t *testing.T) {
	_, ok := AltRow(models.SourceSenate, "senate_trade", map[string]interface{}{"Ticker": ""})
	assert.False(t, ok)

	_, ok = AltRow(models.SourceSenate, "senate_trade", map[string]interface{}{"Ticker": "N/A"})
	assert.False(t, ok)

	_, ok = AltRow(models.SourceSenate, "senate_trade", map[string]interface{}{"Amount": "$1 - $2"})
	assert.False(t, ok)
}

func TestAltRowMissingDirectionDefaults(t *testing.T) {
	ns, ok := AltRow(models.SourceHouse, "house_trade", map[string]interface{}{"Ticker": "AMD"})
	require.True(t, ok)
	assert.Equal(t, "n/a", ns.Direction)
}
