package service

import (
	"context"

	"MarketRadar/internal/domain/models"
)

// BarsProvider returns a time-ordered recent bar series for a symbol.
// Implementations fail closed: an empty slice on any provider failure.
type BarsProvider interface {
	FetchPriceBars(ctx context.Context, symbol string) []models.Bar
}

// OptionsProvider returns a nearest-expiry options snapshot for a
// symbol, or HasOptions=false when the instrument has no listed chain.
type OptionsProvider interface {
	FetchOptionsSnapshot(ctx context.Context, symbol string) models.OptionsSnapshot
}

// EventsProvider returns loosely-typed prediction-market event rows.
type EventsProvider interface {
	FetchEvents(ctx context.Context, query string, limit int) []map[string]interface{}
}

// AltDataProvider returns loosely-typed alternative-data trade rows.
// Enabled reports whether the provider has a usable credential; a
// disabled provider returns empty results everywhere.
type AltDataProvider interface {
	Enabled() bool
	FetchSenateTrades(ctx context.Context) []map[string]interface{}
	FetchHouseTrades(ctx context.Context) []map[string]interface{}
	FetchInsiderTrades(ctx context.Context) []map[string]interface{}
}
