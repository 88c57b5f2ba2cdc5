package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"MarketRadar/internal/domain/models"
)

func barsFromCloses(closes []float64, volumes []float64) []models.Bar {
	base := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		vol := 0.0
		if i < len(volumes) {
			vol = volumes[i]
		}
		bars[i] = models.Bar{
			TS: base.Add(time.Duration(i) * 15 * time.Minute), Close: c, Volume: vol,
		}
	}
	return bars
}

func TestZScoreRequiresTenPoints(t *testing.T) {
	short := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Zero(t, ZScore(short))
}

func TestZScoreOfOutlier(t *testing.T) {
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = 100
	}
	vals[len(vals)-1] = 200

	z := ZScore(vals)
	assert.Greater(t, z, 4.0, "a single spike against a flat series is far from the mean")
}

func TestZScoreFlatSeriesIsZero(t *testing.T) {
	vals := make([]float64, 15)
	for i := range vals {
		vals[i] = 42
	}
	assert.InDelta(t, 0.0, ZScore(vals), 1e-6)
}

func TestStockFeaturesEmptyBarsYieldEmptySet(t *testing.T) {
	assert.Empty(t, StockFeatures(nil))
	assert.Empty(t, StockFeatures([]models.Bar{}))
}

func TestStockFeaturesRetOne(t *testing.T) {
	fv := StockFeatures(barsFromCloses([]float64{100, 102}, nil))
	assert.InDelta(t, 0.02, fv["ret_1"], 1e-9)
	assert.InDelta(t, 102, fv["last_close"], 1e-9)
}

func TestStockFeaturesSingleBarImputesZeroReturn(t *testing.T) {
	fv := StockFeatures(barsFromCloses([]float64{100}, nil))
	assert.Zero(t, fv["ret_1"])
	assert.InDelta(t, 100, fv["last_close"], 1e-9)
}

func TestStockFeaturesZeroPreviousCloseImputes(t *testing.T) {
	fv := StockFeatures(barsFromCloses([]float64{0, 50}, nil))
	assert.Zero(t, fv["ret_1"])
}

func TestStockFeaturesVolatilityOfFlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	fv := StockFeatures(barsFromCloses(closes, nil))
	assert.Zero(t, fv["ret_vol_20"])
}

func TestStockFeaturesVolumeSpike(t *testing.T) {
	closes := make([]float64, 25)
	volumes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}
	volumes[24] = 10000

	fv := StockFeatures(barsFromCloses(closes, volumes))
	assert.Greater(t, fv["vol_z"], 2.0)
}

func TestOptionsFeaturesNoChain(t *testing.T) {
	fv := OptionsFeatures(models.OptionsSnapshot{Symbol: "BRK-A"})
	assert.Equal(t, models.FeatureVector{"has_options": 0.0}, fv)
}

func TestOptionsFeaturesRatios(t *testing.T) {
	fv := OptionsFeatures(models.OptionsSnapshot{
		Symbol:     "AAPL",
		HasOptions: true,
		CallVolume: 3000,
		PutVolume:  1000,
		CallOI:     50000,
		PutOI:      25000,
	})
	assert.Equal(t, 1.0, fv["has_options"])
	assert.InDelta(t, 2.0, fv["call_put_oi_ratio"], 1e-9)
	assert.InDelta(t, 3.0, fv["call_put_vol_ratio"], 1e-9)
}

func TestOptionsFeaturesFloorsDenominatorAtOne(t *testing.T) {
	fv := OptionsFeatures(models.OptionsSnapshot{
		Symbol:     "TSLA",
		HasOptions: true,
		CallVolume: 500,
		PutVolume:  0,
		CallOI:     200,
		PutOI:      0.5,
	})
	assert.InDelta(t, 500.0, fv["call_put_vol_ratio"], 1e-9)
	assert.InDelta(t, 200.0, fv["call_put_oi_ratio"], 1e-9)
}
