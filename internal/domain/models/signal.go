package models

import "time"

// Source tags the origin feed of a signal.
type Source string

const (
	SourceStock    Source = "STOCK"
	SourceOptions  Source = "OPTIONS"
	SourcePoly     Source = "POLY"
	SourceSenate   Source = "SENATE"
	SourceHouse    Source = "HOUSE"
	SourceInsider  Source = "INSIDER"
	SourceCongress Source = "CONGRESS"
)

// DirectionNone is the direction placeholder for sources without
// buy/sell semantics.
const DirectionNone = "N/A"

// FeatureVector maps named feature keys to floats. Missing features are
// imputed to 0.0 at vectorization time, never left nil.
type FeatureVector map[string]float64

// NormalizedSignal is the canonical record every provider payload is
// reduced to before feature extraction. Value type, never mutated.
type NormalizedSignal struct {
	Source    Source                 `json:"source"`
	Symbol    string                 `json:"symbol"`
	Kind      string                 `json:"kind"`
	Direction string                 `json:"direction"`
	Notional  float64                `json:"notional"`
	Raw       map[string]interface{} `json:"raw"`
}

// ScoredSignal is the scoring engine output for one NormalizedSignal.
type ScoredSignal struct {
	Features        FeatureVector `json:"features"`
	AnomalyScore    float64       `json:"anomaly_score"`
	ClassLabel      string        `json:"class_label"`
	ClassConfidence float64       `json:"class_confidence"`
}

// Signal is the persisted record: canonical fields plus scoring results
// plus generated identity.
type Signal struct {
	ID              string                 `json:"id"`
	CreatedAt       time.Time              `json:"created_at"`
	Source          Source                 `json:"source"`
	Symbol          string                 `json:"symbol"`
	Kind            string                 `json:"kind"`
	Direction       string                 `json:"direction"`
	Notional        float64                `json:"notional"`
	Raw             map[string]interface{} `json:"raw"`
	Features        FeatureVector          `json:"features"`
	AnomalyScore    float64                `json:"anomaly_score"`
	ClassLabel      string                 `json:"class_label"`
	ClassConfidence float64                `json:"class_confidence"`
}

// Alert is a user-facing notification derived from a significant signal.
// SignalIDs is a list to leave room for multi-signal alerts.
type Alert struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Symbol    string    `json:"symbol"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	SignalIDs []string  `json:"signal_ids"`
}

// Bar represents an OHLCV record for feature extraction.
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// OptionsSnapshot aggregates the nearest-expiry options chain for one
// instrument.
type OptionsSnapshot struct {
	Symbol     string  `json:"symbol"`
	HasOptions bool    `json:"has_options"`
	Expiry     string  `json:"expiry,omitempty"`
	CallVolume float64 `json:"call_volume"`
	PutVolume  float64 `json:"put_volume"`
	CallOI     float64 `json:"calls_oi"`
	PutOI      float64 `json:"puts_oi"`
}

// AsMap returns the snapshot as a raw payload map for audit storage.
func (s OptionsSnapshot) AsMap() map[string]interface{} {
	m := map[string]interface{}{
		"symbol":      s.Symbol,
		"has_options": s.HasOptions,
	}
	if s.HasOptions {
		m["expiry"] = s.Expiry
		m["call_volume"] = s.CallVolume
		m["put_volume"] = s.PutVolume
		m["calls_oi"] = s.CallOI
		m["puts_oi"] = s.PutOI
	}
	return m
}
