package normalize

import (
	"strconv"
	"strings"

	"MarketRadar/internal/domain/models"
)

// Stock builds the canonical record for one watchlist symbol's price
// action. Notional is unknown for raw price moves and stays 0.0.
func Stock(symbol string, bars []models.Bar) models.NormalizedSignal {
	tail := bars
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	tailRows := make([]interface{}, len(tail))
	for i, b := range tail {
		tailRows[i] = map[string]interface{}{
			"ts":     b.TS.Format("2006-01-02T15:04:05Z"),
			"open":   b.Open,
			"high":   b.High,
			"low":    b.Low,
			"close":  b.Close,
			"volume": b.Volume,
		}
	}
	return models.NormalizedSignal{
		Source:    models.SourceStock,
		Symbol:    strings.ToUpper(symbol),
		Kind:      "stock_move",
		Direction: models.DirectionNone,
		Notional:  0.0,
		Raw: map[string]interface{}{
			"provider": "yahoo",
			"rows":     len(bars),
			"tail":     tailRows,
		},
	}
}

// Options builds the canonical record for an options chain snapshot.
// Notional is total traded contract volume across both sides.
func Options(snap models.OptionsSnapshot) models.NormalizedSignal {
	return models.NormalizedSignal{
		Source:    models.SourceOptions,
		Symbol:    strings.ToUpper(snap.Symbol),
		Kind:      "options_snapshot",
		Direction: models.DirectionNone,
		Notional:  snap.CallVolume + snap.PutVolume,
		Raw:       snap.AsMap(),
	}
}

// FlattenEventMarkets flattens one prediction-market event into its
// per-market rows, keeping only the fields the pipeline consumes.
func FlattenEventMarkets(event map[string]interface{}) []map[string]interface{} {
	markets, _ := event["markets"].([]interface{})
	rows := make([]map[string]interface{}, 0, len(markets))
	for _, raw := range markets {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"market_id":      m["id"],
			"condition_id":   m["conditionId"],
			"question":       m["question"],
			"slug":           m["slug"],
			"volume":         m["volume"],
			"liquidity":      m["liquidity"],
			"clob_token_ids": m["clobTokenIds"],
		})
	}
	return rows
}

// PolymarketMarket builds the canonical record for one flattened
// market row. The symbol falls back from slug to condition id to
// market id; a row with none of them is unusable and returns ok=false.
func PolymarketMarket(market map[string]interface{}) (models.NormalizedSignal, bool) {
	symbol := CoerceString(market["slug"])
	if symbol == "" {
		symbol = CoerceString(market["condition_id"])
	}
	if symbol == "" {
		symbol = CoerceString(market["market_id"])
	}
	if symbol == "" {
		return models.NormalizedSignal{}, false
	}

	return models.NormalizedSignal{
		Source:    models.SourcePoly,
		Symbol:    strings.ToUpper(symbol),
		Kind:      "polymarket_market",
		Direction: models.DirectionNone,
		Notional:  CoerceFloat(market["volume"]),
		Raw:       market,
	}, true
}

// AltRow builds the canonical record for one alternative-data trade
// row. Rows without a usable ticker return ok=false and are skipped.
// Direction is the lowercased transaction type; notional comes from
// the amount range or transaction value, whichever the feed carries.
func AltRow(source models.Source, kind string, row map[string]interface{}) (models.NormalizedSignal, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(firstString(row, "Ticker", "ticker", "symbol")))
	if symbol == "" || symbol == "N/A" {
		return models.NormalizedSignal{}, false
	}

	direction := strings.ToLower(strings.TrimSpace(firstString(row, "Transaction", "transaction", "transactionType")))
	if direction == "" {
		direction = strings.ToLower(models.DirectionNone)
	}

	notional := CoerceFloat(firstValue(row, "Amount", "amount"))
	if notional == 0 {
		notional = CoerceFloat(firstValue(row, "Value", "value"))
	}

	return models.NormalizedSignal{
		Source:    source,
		Symbol:    symbol,
		Kind:      kind,
		Direction: direction,
		Notional:  notional,
		Raw:       row,
	}, true
}

// ParseAmount converts disclosure amount strings into float dollars.
// Range strings like "$1,001 - $15,000" resolve to the midpoint; empty
// or sentinel values resolve to 0.0, as does anything unparseable.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0.0
	}

	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", "")
	if idx := strings.Index(cleaned, "-"); idx >= 0 {
		low, err1 := strconv.ParseFloat(strings.TrimSpace(cleaned[:idx]), 64)
		high, err2 := strconv.ParseFloat(strings.TrimSpace(cleaned[idx+1:]), 64)
		if err1 != nil || err2 != nil {
			return 0.0
		}
		return (low + high) / 2.0
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0.0
	}
	return v
}

// CoerceFloat converts loosely-typed payload values to float64,
// treating amount-range strings the same as ParseAmount. Anything
// unconvertible resolves to 0.0.
func CoerceFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		return ParseAmount(x)
	default:
		return 0.0
	}
}

// CoerceString converts loosely-typed payload values to a trimmed
// string, rendering numerics rather than dropping them.
func CoerceString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func firstString(row map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := CoerceString(row[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstValue(row map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
