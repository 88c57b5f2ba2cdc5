package repository

import (
	"context"
	"time"

	"MarketRadar/internal/domain/models"
)

// SignalFilter narrows signal queries. Zero values mean "any".
type SignalFilter struct {
	Symbol string
	Source string
	Since  time.Time
	Limit  int
	Offset int
}

// AlertFilter narrows alert queries.
type AlertFilter struct {
	Symbol string
	Limit  int
	Offset int
}

// SignalStore persists and queries scored signals. Query results are
// ordered most-recent-first by creation time.
type SignalStore interface {
	Init(ctx context.Context) error
	StoreSignal(ctx context.Context, s *models.Signal) error
	ListSignals(ctx context.Context, f SignalFilter) ([]*models.Signal, error)
	RecentFeatures(ctx context.Context, limit int) ([]models.FeatureVector, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertStore persists and queries alerts.
type AlertStore interface {
	StoreAlert(ctx context.Context, a *models.Alert) error
	ListAlerts(ctx context.Context, f AlertFilter) ([]*models.Alert, error)
}

// AlertPublisher fans raised alerts out to downstream consumers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a *models.Alert) error
	Close() error
}

// Metrics records operational telemetry.
type Metrics interface {
	RecordSignal(source string)
	RecordAlert(severity string)
	RecordError(kind string)
	RecordAnomalyScore(symbol string, score float64)
	RecordBreakerState(provider string, state int)
	RecordLatency(op string, seconds float64)
}
