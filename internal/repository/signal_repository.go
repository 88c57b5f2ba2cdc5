package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/repository"
	"MarketRadar/pkg/clickhouse"
	"MarketRadar/pkg/logger"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		id               String,
		created_at       DateTime64(3, 'UTC'),
		source           LowCardinality(String),
		symbol           String,
		kind             LowCardinality(String),
		direction        String,
		notional         Float64,
		raw              String,
		features         String,
		anomaly_score    Float64,
		class_label      LowCardinality(String),
		class_confidence Float64
	) ENGINE = MergeTree()
	ORDER BY (created_at, id)
	TTL toDateTime(created_at) + INTERVAL 90 DAY`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id         String,
		created_at DateTime64(3, 'UTC'),
		symbol     String,
		severity   LowCardinality(String),
		title      String,
		body       String,
		signal_ids String
	) ENGINE = MergeTree()
	ORDER BY (created_at, id)
	TTL toDateTime(created_at) + INTERVAL 90 DAY`,
}

// SignalRepository persists signals and alerts in ClickHouse. Raw
// payloads, feature maps and signal id lists are stored as JSON text
// columns; everything queried or filtered on is a real column.
type SignalRepository struct {
	client *clickhouse.Client
	logger *logger.Logger
}

// NewSignalRepository creates a repository over an open client.
func NewSignalRepository(client *clickhouse.Client, log *logger.Logger) *SignalRepository {
	return &SignalRepository{client: client, logger: log}
}

// Init creates the tables if they do not exist.
func (r *SignalRepository) Init(ctx context.Context) error {
	return r.client.InitSchema(ctx, schemaStatements)
}

// StoreSignal inserts one scored signal.
func (r *SignalRepository) StoreSignal(ctx context.Context, s *models.Signal) error {
	rawJSON, err := json.Marshal(s.Raw)
	if err != nil {
		return fmt.Errorf("marshal raw: %w", err)
	}
	featJSON, err := json.Marshal(s.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	_, err = r.client.DB().ExecContext(ctx,
		`INSERT INTO signals
			(id, created_at, source, symbol, kind, direction, notional,
			 raw, features, anomaly_score, class_label, class_confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CreatedAt, string(s.Source), s.Symbol, s.Kind, s.Direction, s.Notional,
		string(rawJSON), string(featJSON), s.AnomalyScore, s.ClassLabel, s.ClassConfidence,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// ListSignals returns signals most-recent-first, optionally filtered
// by symbol and source.
func (r *SignalRepository) ListSignals(ctx context.Context, f repository.SignalFilter) ([]*models.Signal, error) {
	query := `SELECT id, created_at, source, symbol, kind, direction, notional,
			raw, features, anomaly_score, class_label, class_confidence
		FROM signals`

	where, args := buildWhere(map[string]string{
		"symbol": strings.ToUpper(f.Symbol),
		"source": strings.ToUpper(f.Source),
	})
	if !f.Since.IsZero() {
		if where == "" {
			where = " WHERE created_at >= ?"
		} else {
			where += " AND created_at >= ?"
		}
		args = append(args, f.Since)
	}
	query += where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecentFeatures returns the feature maps of the most recent signals,
// used to refit the anomaly model.
func (r *SignalRepository) RecentFeatures(ctx context.Context, limit int) ([]models.FeatureVector, error) {
	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT features FROM signals ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var out []models.FeatureVector
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan features: %w", err)
		}
		var fv models.FeatureVector
		if err := json.Unmarshal([]byte(raw), &fv); err != nil {
			// One corrupt row must not starve the refit.
			r.logger.Warn("skipping undecodable feature row", logger.Error(err))
			continue
		}
		out = append(out, fv)
	}
	return out, rows.Err()
}

// StoreAlert inserts one alert.
func (r *SignalRepository) StoreAlert(ctx context.Context, a *models.Alert) error {
	idsJSON, err := json.Marshal(a.SignalIDs)
	if err != nil {
		return fmt.Errorf("marshal signal ids: %w", err)
	}

	_, err = r.client.DB().ExecContext(ctx,
		`INSERT INTO alerts (id, created_at, symbol, severity, title, body, signal_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt, a.Symbol, a.Severity, a.Title, a.Body, string(idsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts most-recent-first, optionally filtered by
// symbol.
func (r *SignalRepository) ListAlerts(ctx context.Context, f repository.AlertFilter) ([]*models.Alert, error) {
	query := `SELECT id, created_at, symbol, severity, title, body, signal_ids FROM alerts`
	where, args := buildWhere(map[string]string{"symbol": strings.ToUpper(f.Symbol)})
	query += where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []*models.Alert
	for rows.Next() {
		var (
			a       models.Alert
			created time.Time
			idsJSON string
		)
		if err := rows.Scan(&a.ID, &created, &a.Symbol, &a.Severity, &a.Title, &a.Body, &idsJSON); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.CreatedAt = created
		if err := json.Unmarshal([]byte(idsJSON), &a.SignalIDs); err != nil {
			a.SignalIDs = nil
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Health pings the underlying connection.
func (r *SignalRepository) Health(ctx context.Context) error {
	return r.client.Health(ctx)
}

// Close releases the connection pool.
func (r *SignalRepository) Close() error {
	return r.client.Close()
}

func buildWhere(eq map[string]string) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	// Deterministic clause order keeps queries cache-friendly.
	for _, col := range []string{"symbol", "source"} {
		if v, ok := eq[col]; ok && v != "" {
			clauses = append(clauses, col+" = ?")
			args = append(args, v)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanSignal(rows *sql.Rows) (*models.Signal, error) {
	var (
		s        models.Signal
		created  time.Time
		source   string
		rawJSON  string
		featJSON string
	)
	if err := rows.Scan(&s.ID, &created, &source, &s.Symbol, &s.Kind, &s.Direction,
		&s.Notional, &rawJSON, &featJSON, &s.AnomalyScore, &s.ClassLabel, &s.ClassConfidence); err != nil {
		return nil, fmt.Errorf("scan signal: %w", err)
	}
	s.CreatedAt = created
	s.Source = models.Source(source)
	if err := json.Unmarshal([]byte(rawJSON), &s.Raw); err != nil {
		s.Raw = map[string]interface{}{}
	}
	if err := json.Unmarshal([]byte(featJSON), &s.Features); err != nil {
		s.Features = models.FeatureVector{}
	}
	return &s, nil
}
