package analytics

import "MarketRadar/internal/domain/models"

// FeatureOrder is the fixed column schema for anomaly model vectors.
// Column positions are part of the trained model's contract; changing
// the order invalidates any fitted state.
var FeatureOrder = []string{
	"ret_1",
	"vol_z",
	"ret_vol_20",
	"call_put_oi_ratio",
	"call_put_vol_ratio",
	"notional_log",
}

// Vectorize converts a feature map into a fixed-order vector. Missing
// keys impute to 0.0, a neutral value for every column in the schema.
func Vectorize(features models.FeatureVector) []float64 {
	vec := make([]float64, len(FeatureOrder))
	for i, key := range FeatureOrder {
		vec[i] = features[key]
	}
	return vec
}
