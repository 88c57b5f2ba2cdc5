package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketRadar/internal/domain/models"
)

func clusteredFeatures(rng *rand.Rand, n int) []models.FeatureVector {
	out := make([]models.FeatureVector, n)
	for i := range out {
		out[i] = models.FeatureVector{
			"ret_1":              0.001 + rng.Float64()*0.002,
			"vol_z":              rng.Float64()*0.5 - 0.25,
			"ret_vol_20":         0.01 + rng.Float64()*0.005,
			"call_put_oi_ratio":  1.0 + rng.Float64()*0.2,
			"call_put_vol_ratio": 1.0 + rng.Float64()*0.2,
			"notional_log":       10.0 + rng.Float64(),
		}
	}
	return out
}

func TestScoreUntrainedIsExactlyZero(t *testing.T) {
	f := NewIsoForest()
	assert.False(t, f.Trained())
	assert.Equal(t, 0.0, f.Score(models.FeatureVector{"ret_1": 99.0}))
}

func TestFitBelowFiftyRowsStaysUntrained(t *testing.T) {
	f := NewIsoForest()
	f.Fit(clusteredFeatures(rand.New(rand.NewSource(1)), 49))
	assert.False(t, f.Trained())
	assert.Equal(t, 0.0, f.Score(models.FeatureVector{}))
}

func TestFitAtFiftyRowsTrains(t *testing.T) {
	f := NewIsoForest()
	f.Fit(clusteredFeatures(rand.New(rand.NewSource(1)), 50))
	assert.True(t, f.Trained())
}

func TestScoreAlwaysInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	f := NewIsoForest()
	f.Fit(clusteredFeatures(rng, 200))

	probes := []models.FeatureVector{
		{},
		{"ret_1": 0.001, "notional_log": 10.0},
		{"ret_1": -50, "vol_z": 80, "notional_log": 30},
		{"ret_1": 1e9},
	}
	for _, p := range probes {
		s := f.Score(p)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestOutlierScoresHigherThanTypicalPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	train := clusteredFeatures(rng, 300)
	f := NewIsoForest()
	f.Fit(train)

	typical := f.Score(train[0])
	outlier := f.Score(models.FeatureVector{
		"ret_1":              0.5,
		"vol_z":              12.0,
		"ret_vol_20":         0.4,
		"call_put_oi_ratio":  40.0,
		"call_put_vol_ratio": 40.0,
		"notional_log":       20.0,
	})
	assert.Greater(t, outlier, typical)
	assert.Greater(t, outlier, 0.5, "a far outlier should land on the anomalous side")
}

func TestRefitIsDeterministic(t *testing.T) {
	train := clusteredFeatures(rand.New(rand.NewSource(4)), 120)
	probe := models.FeatureVector{"ret_1": 0.2, "vol_z": 5.0, "notional_log": 14.0}

	a := NewIsoForest()
	a.Fit(train)
	b := NewIsoForest()
	b.Fit(train)

	assert.Equal(t, a.Score(probe), b.Score(probe))
}

func TestVectorizeFixedOrderAndImputation(t *testing.T) {
	vec := Vectorize(models.FeatureVector{
		"vol_z":        2.5,
		"notional_log": 11.0,
		"extraneous":   99.0,
	})
	require.Len(t, vec, len(FeatureOrder))
	assert.Equal(t, []float64{0.0, 2.5, 0.0, 0.0, 0.0, 11.0}, vec)
}
