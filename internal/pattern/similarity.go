package pattern

import (
	"math"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
)

// Numeric feature weights and tolerances. Per-feature similarity is
// max(0, 100*(1 - relDiff/tolerance)) with relDiff = |a-b| / avg(|a|,|b|).
// Categorical zone features award their full weight only on exact match.
var numericFeatures = []struct {
	name      string
	weight    float64
	tolerance float64
	extract   func(featureSet) (float64, bool)
}{
	{"rsi", 15, 0.30, func(f featureSet) (float64, bool) { return deref(f.snap.RSI) }},
	{"macd", 10, 0.50, func(f featureSet) (float64, bool) { return deref(f.snap.MACD) }},
	{"macd_histogram", 5, 0.60, func(f featureSet) (float64, bool) { return deref(f.snap.MACDHistogram) }},
	{"price_sma5", 8, 0.05, func(f featureSet) (float64, bool) { return f.priceRatio(f.snap.SMA5) }},
	{"price_sma20", 8, 0.05, func(f featureSet) (float64, bool) { return f.priceRatio(f.snap.SMA20) }},
	{"price_sma50", 6, 0.08, func(f featureSet) (float64, bool) { return f.priceRatio(f.snap.SMA50) }},
	{"ema_ratio", 8, 0.05, func(f featureSet) (float64, bool) { return f.emaRatio() }},
	{"bb_position", 10, 0.40, func(f featureSet) (float64, bool) { return f.bollingerPosition(), true }},
}

var categoricalFeatures = []struct {
	name    string
	weight  float64
	extract func(featureSet) (string, bool)
}{
	{"rsi_zone", 10, func(f featureSet) (string, bool) { return f.rsiZone() }},
	{"macd_cross", 10, func(f featureSet) (string, bool) { return f.macdCross() }},
	{"sma_trend", 10, func(f featureSet) (string, bool) { return f.smaTrend() }},
}

// featureSet pairs a snapshot with its close price for derived features.
type featureSet struct {
	snap  indicator.Snapshot
	price float64
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (f featureSet) priceRatio(ma *float64) (float64, bool) {
	if ma == nil || *ma == 0 {
		return 0, false
	}
	return f.price / *ma, true
}

func (f featureSet) emaRatio() (float64, bool) {
	if f.snap.EMA12 == nil || f.snap.EMA26 == nil || *f.snap.EMA26 == 0 {
		return 0, false
	}
	return *f.snap.EMA12 / *f.snap.EMA26, true
}

// bollingerPosition is the relative position within the bands in [0, 100].
// A zero-width band falls back to 50 rather than dividing by zero.
func (f featureSet) bollingerPosition() float64 {
	if f.snap.BBUpper == nil || f.snap.BBLower == nil {
		return 50
	}
	upper, lower := *f.snap.BBUpper, *f.snap.BBLower
	if upper == lower {
		return 50
	}
	pos := (f.price - lower) / (upper - lower) * 100
	return pos
}

func (f featureSet) rsiZone() (string, bool) {
	if f.snap.RSI == nil {
		return "", false
	}
	rsi := *f.snap.RSI
	switch {
	case rsi < 30:
		return "oversold", true
	case rsi < 50:
		return "weak", true
	case rsi < 70:
		return "strong", true
	default:
		return "overbought", true
	}
}

func (f featureSet) macdCross() (string, bool) {
	if f.snap.MACD == nil || f.snap.MACDSignal == nil {
		return "", false
	}
	if *f.snap.MACD > *f.snap.MACDSignal {
		return "bullish", true
	}
	return "bearish", true
}

func (f featureSet) smaTrend() (string, bool) {
	if f.snap.SMA5 == nil || f.snap.SMA20 == nil || f.snap.SMA50 == nil {
		return "", false
	}
	s5, s20, s50 := *f.snap.SMA5, *f.snap.SMA20, *f.snap.SMA50
	switch {
	case s5 > s20 && s20 > s50:
		return "uptrend", true
	case s5 < s20 && s20 < s50:
		return "downtrend", true
	default:
		return "mixed", true
	}
}

// similarity scores one historical regime against the current one on a
// 0-100 scale. Features missing on either side are excluded from both the
// numerator and the denominator.
func similarity(current, historical featureSet) float64 {
	var weighted, totalWeight float64

	for _, f := range numericFeatures {
		a, okA := f.extract(current)
		b, okB := f.extract(historical)
		if !okA || !okB {
			continue
		}
		weighted += f.weight * featureSimilarity(a, b, f.tolerance)
		totalWeight += f.weight
	}

	for _, f := range categoricalFeatures {
		za, okA := f.extract(current)
		zb, okB := f.extract(historical)
		if !okA || !okB {
			continue
		}
		if za == zb {
			weighted += f.weight * 100
		}
		totalWeight += f.weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// featureSimilarity maps the relative difference of two values onto [0, 100]
// using the feature tolerance. Identical values (including both zero) score
// 100; a zero alongside a non-zero scores 0.
func featureSimilarity(a, b, tolerance float64) float64 {
	if a == b {
		return 100
	}
	avg := (math.Abs(a) + math.Abs(b)) / 2
	if avg == 0 {
		return 0
	}
	relDiff := math.Abs(a-b) / avg
	return math.Max(0, 100*(1-relDiff/tolerance))
}

// recencyBonus is the multiplier applied to the raw similarity based on the
// age of the historical snapshot in trading days.
func recencyBonus(ageDays int) float64 {
	switch {
	case ageDays <= 7:
		return 1.10
	case ageDays <= 14:
		return 1.07
	case ageDays <= 30:
		return 1.05
	case ageDays <= 60:
		return 1.03
	default:
		return 1.0
	}
}
