package features

import (
	"math"

	"MarketRadar/internal/domain/models"
)

const (
	// minZScorePoints is the minimum series length before a z-score is
	// considered meaningful. Shorter series score 0.0.
	minZScorePoints = 10

	// retVolWindow is the trailing return window for realized volatility.
	retVolWindow = 20

	epsilon = 1e-9
)

// ZScore returns the z-score of the last value against the population
// mean and standard deviation of the whole series. Series shorter than
// ten points return 0.0, as does a flat series.
func ZScore(values []float64) float64 {
	if len(values) < minZScorePoints {
		return 0.0
	}
	mean := meanOf(values)
	std := stdOf(values, mean)
	return (values[len(values)-1] - mean) / (std + epsilon)
}

// StockFeatures derives price and volume features from a bar series.
// An empty series yields an empty feature set; vectorization imputes
// the missing keys to 0.0.
func StockFeatures(bars []models.Bar) models.FeatureVector {
	if len(bars) == 0 {
		return models.FeatureVector{}
	}
	fv := models.FeatureVector{
		"last_close": 0.0,
		"ret_1":      0.0,
		"ret_vol_20": 0.0,
		"vol_z":      0.0,
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	fv["last_close"] = closes[len(closes)-1]

	returns := pctChange(closes)
	if len(returns) > 0 {
		fv["ret_1"] = returns[len(returns)-1]
	}

	tail := returns
	if len(tail) > retVolWindow {
		tail = tail[len(tail)-retVolWindow:]
	}
	if len(tail) > 0 {
		fv["ret_vol_20"] = stdOf(tail, meanOf(tail))
	}

	fv["vol_z"] = ZScore(volumes)
	return fv
}

// OptionsFeatures derives call/put flow ratios from an options
// snapshot. Denominators are floored at 1.0 so an empty put side
// yields the raw call figure instead of a blow-up. An instrument
// without a chain carries only the has_options marker.
func OptionsFeatures(snap models.OptionsSnapshot) models.FeatureVector {
	if !snap.HasOptions {
		return models.FeatureVector{"has_options": 0.0}
	}
	return models.FeatureVector{
		"has_options":        1.0,
		"call_put_oi_ratio":  snap.CallOI / math.Max(snap.PutOI, 1.0),
		"call_put_vol_ratio": snap.CallVolume / math.Max(snap.PutVolume, 1.0),
	}
}

// pctChange returns element-wise percentage change with the first
// element imputed to 0.0. A zero previous close also imputes to 0.0.
func pctChange(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdOf is the population standard deviation.
func stdOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
