package scoring

import (
	"math"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/services/analytics"
	"MarketRadar/pkg/logger"
)

// EnrichFeatures copies the feature set and adds notional_log, a
// log-compressed size signal every source carries regardless of what
// else it was able to compute. Negative notionals clamp to zero.
func EnrichFeatures(features models.FeatureVector, notional float64) models.FeatureVector {
	out := make(models.FeatureVector, len(features)+1)
	for k, v := range features {
		out[k] = v
	}
	out["notional_log"] = math.Log1p(math.Max(notional, 0.0))
	return out
}

// Engine combines the unsupervised anomaly scorer with the heuristic
// classifier. Score is pure apart from reading the forest's trained
// state; FitAnomalyModel is the only mutation.
type Engine struct {
	forest *analytics.IsoForest
	logger *logger.Logger
}

// NewEngine creates a scoring engine with an unfitted anomaly model.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		forest: analytics.NewIsoForest(),
		logger: log,
	}
}

// FitAnomalyModel trains the anomaly detector on historical feature
// sets. Below the training floor the model stays untrained and scores
// stay neutral.
func (e *Engine) FitAnomalyModel(featureSets []models.FeatureVector) {
	e.forest.Fit(featureSets)
	if e.forest.Trained() {
		e.logger.Info("anomaly model fitted", logger.Int("rows", len(featureSets)))
	} else {
		e.logger.Warn("not enough history to fit anomaly model", logger.Int("rows", len(featureSets)))
	}
}

// ModelTrained reports whether the anomaly detector has been fitted.
func (e *Engine) ModelTrained() bool {
	return e.forest.Trained()
}

// Score runs the full pipeline on one normalized record: enrich, then
// anomaly-score, then classify.
func (e *Engine) Score(source models.Source, kind string, features models.FeatureVector, notional float64) models.ScoredSignal {
	enriched := EnrichFeatures(features, notional)
	anomaly := e.forest.Score(enriched)
	label, confidence := analytics.HeuristicLabel(source, kind, enriched)

	return models.ScoredSignal{
		Features:        enriched,
		AnomalyScore:    anomaly,
		ClassLabel:      label,
		ClassConfidence: confidence,
	}
}
