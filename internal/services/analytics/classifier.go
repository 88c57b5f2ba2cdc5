package analytics

import (
	"strings"

	"MarketRadar/internal/domain/models"
)

// High-trust labels that bypass the anomaly threshold at alert time.
const (
	LabelCongressTrade = "congress_trade"
	LabelSenateTrade   = "senate_trade"
	LabelInsiderTrade  = "insider_trade"
)

// HeuristicLabel assigns a class label and confidence from a fixed
// rule table, evaluated in priority order. There is no trained model
// behind this: the rules are an explicit, auditable stand-in until a
// labeled dataset exists, and the confidences encode how much each
// rule is trusted.
func HeuristicLabel(source models.Source, kind string, features models.FeatureVector) (string, float64) {
	src := models.Source(strings.ToUpper(string(source)))

	switch src {
	case models.SourceCongress:
		return LabelCongressTrade, 0.9
	case models.SourceSenate:
		return LabelSenateTrade, 0.9
	case models.SourceInsider:
		return LabelInsiderTrade, 0.9
	case models.SourcePoly:
		return "polymarket_move", 0.7
	}

	if src == models.SourceOptions {
		cpr, ok := features["call_put_vol_ratio"]
		if !ok {
			cpr = 1.0
		}
		switch {
		case cpr >= 3.0:
			return "bullish_options_skew", 0.75
		case cpr <= 0.33:
			return "bearish_options_skew", 0.75
		default:
			return "options_activity", 0.50
		}
	}

	if src == models.SourceStock {
		r := features["ret_1"]
		vz := features["vol_z"]
		if abs(r) > 0.02 && abs(vz) > 2.0 {
			return "price_volume_spike", 0.7
		}
		if features["ret_vol_20"] > 0.03 {
			return "high_volatility", 0.60
		}
		return "stock_move", 0.4
	}

	return "unknown", 0.1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
