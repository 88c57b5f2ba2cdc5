package usecase

import (
	"context"
	"time"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/repository"
	"MarketRadar/pkg/util"
)

// Queries is the read-side surface backing the API layer.
type Queries struct {
	store  repository.SignalStore
	alerts repository.AlertStore
}

// NewQueries creates a query usecase.
func NewQueries(store repository.SignalStore, alerts repository.AlertStore) *Queries {
	return &Queries{store: store, alerts: alerts}
}

// ListSignals returns recent signals matching the request filters. An
// unparseable since value is ignored rather than rejected.
func (q *Queries) ListSignals(ctx context.Context, req *models.ListSignalsRequest) ([]*models.Signal, error) {
	return q.store.ListSignals(ctx, repository.SignalFilter{
		Symbol: req.Symbol,
		Source: req.Source,
		Since:  util.ParseTimeDefault(req.Since, time.Time{}),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// ListAlerts returns recent alerts matching the request filters.
func (q *Queries) ListAlerts(ctx context.Context, req *models.ListAlertsRequest) ([]*models.Alert, error) {
	return q.alerts.ListAlerts(ctx, repository.AlertFilter{
		Symbol: req.Symbol,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

// Health reports storage availability.
func (q *Queries) Health(ctx context.Context) error {
	return q.store.Health(ctx)
}
