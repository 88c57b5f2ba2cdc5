package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal *prometheus.CounterVec
	alertsTotal  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	anomalyScore *prometheus.GaugeVec
	breakerState *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_signals_ingested_total",
				Help: "Total number of signals ingested and persisted",
			},
			[]string{"source"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_alerts_raised_total",
				Help: "Total number of alerts raised",
			},
			[]string{"severity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		anomalyScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketradar_last_anomaly_score",
				Help: "Last anomaly score per symbol",
			},
			[]string{"symbol"},
		),
		breakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketradar_breaker_state",
				Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
			},
			[]string{"provider"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketradar_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal records a persisted signal.
func (r *Recorder) RecordSignal(source string) {
	r.signalsTotal.WithLabelValues(source).Inc()
}

// RecordAlert records a raised alert.
func (r *Recorder) RecordAlert(severity string) {
	r.alertsTotal.WithLabelValues(severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAnomalyScore records the last anomaly score for a symbol.
func (r *Recorder) RecordAnomalyScore(symbol string, score float64) {
	r.anomalyScore.WithLabelValues(symbol).Set(score)
}

// RecordBreakerState records circuit breaker state for a provider.
func (r *Recorder) RecordBreakerState(provider string, state int) {
	r.breakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
