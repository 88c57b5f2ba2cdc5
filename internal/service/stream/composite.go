package stream

import (
	"context"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/service"
)

// minStreamBars is how many settled streamed bars a symbol needs
// before the stream series is statistically useful on its own.
const minStreamBars = 20

// CompositeBars serves bars from the live stream when it has warmed up
// for a symbol and falls back to the REST provider otherwise.
type CompositeBars struct {
	stream *Client
	rest   service.BarsProvider
}

// NewCompositeBars creates a composite provider. stream may be a
// disabled client; rest must not be nil.
func NewCompositeBars(stream *Client, rest service.BarsProvider) *CompositeBars {
	return &CompositeBars{stream: stream, rest: rest}
}

// FetchPriceBars implements service.BarsProvider.
func (c *CompositeBars) FetchPriceBars(ctx context.Context, symbol string) []models.Bar {
	if c.stream != nil && c.stream.Enabled() && c.stream.BarCount(symbol) >= minStreamBars {
		return c.stream.FetchPriceBars(ctx, symbol)
	}
	return c.rest.FetchPriceBars(ctx, symbol)
}
