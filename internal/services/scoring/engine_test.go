package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketRadar/internal/domain/models"
	"MarketRadar/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestEnrichFeaturesAddsNotionalLog(t *testing.T) {
	fv := EnrichFeatures(models.FeatureVector{"ret_1": 0.01}, 1000.0)
	assert.InDelta(t, math.Log1p(1000.0), fv["notional_log"], 1e-9)
	assert.InDelta(t, 0.01, fv["ret_1"], 1e-9)
}

func TestEnrichFeaturesDoesNotMutateInput(t *testing.T) {
	in := models.FeatureVector{"ret_1": 0.01}
	_ = EnrichFeatures(in, 500.0)
	_, present := in["notional_log"]
	assert.False(t, present)
}

func TestEnrichFeaturesClampsNegativeNotional(t *testing.T) {
	fv := EnrichFeatures(models.FeatureVector{}, -250.0)
	assert.Zero(t, fv["notional_log"])
}

func TestScoreUntrainedModelIsNeutral(t *testing.T) {
	e := NewEngine(testLogger(t))
	scored := e.Score(models.SourceStock, "stock_move", models.FeatureVector{"ret_1": 0.5}, 0)
	assert.Equal(t, 0.0, scored.AnomalyScore)
	assert.Equal(t, "stock_move", scored.ClassLabel)
}

func TestScoreCombinesAnomalyAndLabel(t *testing.T) {
	e := NewEngine(testLogger(t))

	rng := rand.New(rand.NewSource(7))
	history := make([]models.FeatureVector, 100)
	for i := range history {
		history[i] = models.FeatureVector{
			"ret_1":        rng.Float64() * 0.002,
			"vol_z":        rng.Float64() * 0.3,
			"notional_log": 10 + rng.Float64(),
		}
	}
	e.FitAnomalyModel(history)
	require.True(t, e.ModelTrained())

	scored := e.Score(models.SourceSenate, "senate_trade", models.FeatureVector{}, 1_000_000)
	assert.Equal(t, "senate_trade", scored.ClassLabel)
	assert.Equal(t, 0.9, scored.ClassConfidence)
	assert.GreaterOrEqual(t, scored.AnomalyScore, 0.0)
	assert.LessOrEqual(t, scored.AnomalyScore, 1.0)
	assert.InDelta(t, math.Log1p(1_000_000), scored.Features["notional_log"], 1e-9)
}

func TestFitBelowFloorKeepsModelUntrained(t *testing.T) {
	e := NewEngine(testLogger(t))
	e.FitAnomalyModel(make([]models.FeatureVector, 10))
	assert.False(t, e.ModelTrained())
}
