// Package pattern searches an indicator history for regimes similar to the
// latest snapshot and aggregates the forward returns of the matches into a
// prediction.
package pattern

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

const (
	// DefaultMinSimilarity is the starting match threshold.
	DefaultMinSimilarity = 70.0
	// thresholdStep is subtracted on each relaxation retry.
	thresholdStep = 10.0
	// thresholdFloor is the lowest threshold the relaxation may reach.
	thresholdFloor = 30.0
	// forwardDays is how many trailing bars are excluded from the scan so
	// every match has a full set of forward returns.
	forwardDays = 7
	// lookbackWindow bounds the historical scan.
	lookbackWindow = 100
)

// horizons are the forward-return windows in trading days.
var horizons = [...]int{1, 3, 5, 7}

// FuturePerformance is the forward outcome of one match over one horizon.
type FuturePerformance struct {
	Days               int     `json:"days"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	HighestPrice       float64 `json:"highest_price"`
	LowestPrice        float64 `json:"lowest_price"`
	Volatility         float64 `json:"volatility"`
}

// Match is one historical regime similar to the current snapshot.
type Match struct {
	Date              time.Time           `json:"date"`
	Similarity        float64             `json:"similarity"`
	Indicators        indicator.Snapshot  `json:"indicators"`
	Close             float64             `json:"close"`
	FuturePerformance []FuturePerformance `json:"future_performance"`
}

// Prediction aggregates the forward returns of all matches.
type Prediction struct {
	AverageReturns map[int]float64 `json:"average_returns"` // horizon days -> mean % change
	SuccessRate    float64         `json:"success_rate"`    // fraction of 7-day matches with positive return
	Confidence     float64         `json:"confidence"`      // min(100, matches/10 * 100)
}

// Analysis is the full result of one pattern search.
type Analysis struct {
	Matches       []Match    `json:"matches"`
	Prediction    Prediction `json:"prediction"`
	ThresholdUsed float64    `json:"threshold_used"`
	Relaxed       bool       `json:"relaxed"`
	Summary       string     `json:"summary"`
}

// Find scans the indicator history for regimes similar to the latest
// snapshot. When no match clears minSimilarity the threshold is relaxed in
// steps of 10 down to a floor of 30; the result reports the threshold that
// actually produced the matches and whether relaxation was needed. An
// exhausted floor yields an empty result with an explanatory summary, not
// an error.
func Find(prices models.PriceSeries, series indicator.Series, minSimilarity float64) (*Analysis, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if series.Len() != len(prices) {
		return nil, fmt.Errorf("indicator series length %d does not match price series length %d", series.Len(), len(prices))
	}
	if minSimilarity < thresholdFloor {
		return nil, fmt.Errorf("minimum similarity %.0f is below the floor of %.0f", minSimilarity, thresholdFloor)
	}

	closes := prices.Closes()
	n := len(prices)
	latest := n - 1
	current := featureSet{snap: series.Latest(), price: closes[latest]}

	// Score every candidate once; thresholding happens afterwards.
	end := n - 1 - forwardDays
	start := end - lookbackWindow
	if start < 0 {
		start = 0
	}
	type candidate struct {
		index int
		score float64
	}
	candidates := make([]candidate, 0, lookbackWindow)
	for i := start; i < end; i++ {
		hist := featureSet{snap: series.At(i), price: closes[i]}
		if hist.snap.RSI == nil && hist.snap.MACD == nil && hist.snap.SMA20 == nil {
			continue // nothing comparable this early in the series
		}
		raw := similarity(current, hist)
		score := math.Min(100, raw*recencyBonus(latest-i))
		candidates = append(candidates, candidate{index: i, score: score})
	}

	threshold := minSimilarity
	var selected []candidate
	for {
		selected = selected[:0]
		for _, c := range candidates {
			if c.score >= threshold {
				selected = append(selected, c)
			}
		}
		if len(selected) > 0 {
			break
		}
		if threshold-thresholdStep < thresholdFloor {
			return &Analysis{
				Matches:       []Match{},
				ThresholdUsed: threshold,
				Relaxed:       threshold != minSimilarity,
				Summary: fmt.Sprintf(
					"No similar patterns found even after relaxing the threshold to %.0f%% (floor %.0f%%).",
					threshold, thresholdFloor),
			}, nil
		}
		threshold -= thresholdStep
	}

	matches := make([]Match, 0, len(selected))
	for _, c := range selected {
		matches = append(matches, Match{
			Date:              prices[c.index].Date,
			Similarity:        round2(c.score),
			Indicators:        series.At(c.index),
			Close:             closes[c.index],
			FuturePerformance: forwardPerformance(closes, c.index),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })

	prediction := aggregate(matches)
	return &Analysis{
		Matches:       matches,
		Prediction:    prediction,
		ThresholdUsed: threshold,
		Relaxed:       threshold != minSimilarity,
		Summary:       summarize(prediction, len(matches), threshold, threshold != minSimilarity),
	}, nil
}

// forwardPerformance computes the forward outcome of the match at index i
// over each horizon. The window closes[i..i+h] provides the extremes and
// the realized volatility (stddev/mean).
func forwardPerformance(closes []float64, i int) []FuturePerformance {
	out := make([]FuturePerformance, 0, len(horizons))
	base := closes[i]
	for _, h := range horizons {
		if i+h >= len(closes) {
			break
		}
		window := closes[i : i+h+1]
		highest, lowest := window[0], window[0]
		for _, v := range window {
			if v > highest {
				highest = v
			}
			if v < lowest {
				lowest = v
			}
		}
		change := closes[i+h] - base
		perf := FuturePerformance{
			Days:         h,
			PriceChange:  change,
			HighestPrice: highest,
			LowestPrice:  lowest,
		}
		if base != 0 {
			perf.PriceChangePercent = change / base * 100
		}
		if mean := indicator.Mean(window); mean != 0 {
			perf.Volatility = indicator.StdDev(window) / mean
		}
		out = append(out, perf)
	}
	return out
}

// aggregate folds all match forward returns into the prediction.
func aggregate(matches []Match) Prediction {
	sums := make(map[int]float64, len(horizons))
	counts := make(map[int]int, len(horizons))
	var sevenDayTotal, sevenDayPositive int

	for _, m := range matches {
		for _, fp := range m.FuturePerformance {
			sums[fp.Days] += fp.PriceChangePercent
			counts[fp.Days]++
			if fp.Days == forwardDays {
				sevenDayTotal++
				if fp.PriceChangePercent > 0 {
					sevenDayPositive++
				}
			}
		}
	}

	avg := make(map[int]float64, len(horizons))
	for _, h := range horizons {
		if counts[h] > 0 {
			avg[h] = round2(sums[h] / float64(counts[h]))
		}
	}

	p := Prediction{
		AverageReturns: avg,
		Confidence:     math.Min(100, float64(len(matches))/10*100),
	}
	if sevenDayTotal > 0 {
		p.SuccessRate = float64(sevenDayPositive) / float64(sevenDayTotal)
	}
	return p
}

// summarize renders the prediction as a sentence. The qualitative wording
// switches at a 70% / 55% / 30% success rate.
func summarize(p Prediction, matchCount int, threshold float64, relaxed bool) string {
	successPct := p.SuccessRate * 100
	avg7 := p.AverageReturns[forwardDays]

	var outlook string
	switch {
	case successPct >= 70 && avg7 > 0:
		outlook = fmt.Sprintf("strong upside tendency: %.0f%% of matches rose over 7 days (avg %+.2f%%)", successPct, avg7)
	case successPct >= 55:
		outlook = fmt.Sprintf("mild upside tendency: %.0f%% of matches rose over 7 days (avg %+.2f%%)", successPct, avg7)
	case successPct <= 30:
		outlook = fmt.Sprintf("downside tendency: only %.0f%% of matches rose over 7 days (avg %+.2f%%)", successPct, avg7)
	default:
		outlook = fmt.Sprintf("no clear tendency: %.0f%% of matches rose over 7 days (avg %+.2f%%)", successPct, avg7)
	}

	s := fmt.Sprintf("Found %d similar pattern(s) at threshold %.0f%%; %s.", matchCount, threshold, outlook)
	if relaxed {
		s += " The similarity threshold was relaxed to find these matches."
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
