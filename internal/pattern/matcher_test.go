package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

func fp(v float64) *float64 { return &v }

func series(closes []float64) models.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return out
}

// cyclic produces a repeating wave so historical regimes recur and the
// matcher has genuinely similar snapshots to find.
func cyclic(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/8) + 0.02*float64(i)
	}
	return out
}

func TestFeatureSimilarity(t *testing.T) {
	t.Run("identical values score 100", func(t *testing.T) {
		assert.Equal(t, 100.0, featureSimilarity(55, 55, 0.3))
		assert.Equal(t, 100.0, featureSimilarity(0, 0, 0.3))
	})

	t.Run("zero against non-zero scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, featureSimilarity(0, 0.0001, 0.3))
	})

	t.Run("decreases with relative distance", func(t *testing.T) {
		near := featureSimilarity(50, 52, 0.3)
		far := featureSimilarity(50, 70, 0.3)
		assert.Greater(t, near, far)
		assert.GreaterOrEqual(t, far, 0.0)
	})

	t.Run("clamps at zero beyond tolerance", func(t *testing.T) {
		assert.Equal(t, 0.0, featureSimilarity(10, 100, 0.05))
	})
}

func TestSimilarity(t *testing.T) {
	snap := indicator.Snapshot{
		RSI: fp(45), MACD: fp(1.2), MACDSignal: fp(1.0), MACDHistogram: fp(0.2),
		SMA5: fp(101), SMA20: fp(100), SMA50: fp(99),
		EMA12: fp(101), EMA26: fp(100),
		BBUpper: fp(110), BBMiddle: fp(100), BBLower: fp(90),
	}
	fs := featureSet{snap: snap, price: 102}

	t.Run("a snapshot matches itself perfectly", func(t *testing.T) {
		assert.InDelta(t, 100.0, similarity(fs, fs), 1e-9)
	})

	t.Run("categorical mismatch costs the full zone weight", func(t *testing.T) {
		other := snap
		bearMACD, bearSignal := 0.8, 1.0 // flips the cross direction
		other.MACD = &bearMACD
		other.MACDSignal = &bearSignal
		got := similarity(fs, featureSet{snap: other, price: 102})
		assert.Less(t, got, 95.0)
	})

	t.Run("missing features are excluded from both sides", func(t *testing.T) {
		partial := indicator.Snapshot{RSI: fp(45)}
		got := similarity(featureSet{snap: partial, price: 102}, featureSet{snap: partial, price: 102})
		assert.InDelta(t, 100.0, got, 1e-9)
	})
}

func TestRecencyBonus(t *testing.T) {
	assert.Equal(t, 1.10, recencyBonus(7))
	assert.Equal(t, 1.07, recencyBonus(14))
	assert.Equal(t, 1.05, recencyBonus(30))
	assert.Equal(t, 1.03, recencyBonus(60))
	assert.Equal(t, 1.0, recencyBonus(61))
}

func TestFind(t *testing.T) {
	closes := cyclic(160)
	prices := series(closes)
	ind := indicator.Compute(closes)

	t.Run("finds matches on a cyclic series", func(t *testing.T) {
		result, err := Find(prices, ind, 50)
		require.NoError(t, err)
		require.NotEmpty(t, result.Matches)
		assert.Equal(t, 50.0, result.ThresholdUsed)
		assert.False(t, result.Relaxed)

		// Matches are sorted by similarity, best first.
		for i := 1; i < len(result.Matches); i++ {
			assert.GreaterOrEqual(t, result.Matches[i-1].Similarity, result.Matches[i].Similarity)
		}
	})

	t.Run("matches never come from the forward-return exclusion zone", func(t *testing.T) {
		result, err := Find(prices, ind, 50)
		require.NoError(t, err)
		cutoff := prices[len(prices)-1-forwardDays].Date
		for _, m := range result.Matches {
			assert.True(t, m.Date.Before(cutoff))
			assert.NotEmpty(t, m.FuturePerformance)
			assert.Equal(t, 1, m.FuturePerformance[0].Days)
		}
	})

	t.Run("relaxes the threshold in steps of 10 and reports it", func(t *testing.T) {
		result, err := Find(prices, ind, 90)
		require.NoError(t, err)

		if len(result.Matches) > 0 {
			assert.True(t, result.ThresholdUsed == 90 || result.Relaxed)
			// Whatever threshold was reported, every match clears it.
			for _, m := range result.Matches {
				assert.GreaterOrEqual(t, m.Similarity, result.ThresholdUsed)
			}
			if result.Relaxed {
				assert.Contains(t, result.Summary, "relaxed")
			}
		} else {
			// Exhausted the floor: explicit empty state, not an error.
			assert.True(t, result.Relaxed)
			assert.Contains(t, result.Summary, "No similar patterns")
		}
	})

	t.Run("threshold below the floor is rejected", func(t *testing.T) {
		_, err := Find(prices, ind, 20)
		require.Error(t, err)
	})

	t.Run("mismatched series lengths are rejected", func(t *testing.T) {
		short := indicator.Compute(closes[:100])
		_, err := Find(prices, short, 70)
		require.Error(t, err)
	})

	t.Run("empty prices are rejected", func(t *testing.T) {
		_, err := Find(nil, ind, 70)
		require.Error(t, err)
	})
}

func TestForwardPerformance(t *testing.T) {
	closes := []float64{100, 102, 98, 104, 106, 103, 108, 110, 105}

	t.Run("computes all horizons when enough future exists", func(t *testing.T) {
		out := forwardPerformance(closes, 0)
		require.Len(t, out, 4)

		one := out[0]
		assert.Equal(t, 1, one.Days)
		assert.InDelta(t, 2.0, one.PriceChange, 1e-9)
		assert.InDelta(t, 2.0, one.PriceChangePercent, 1e-9)

		seven := out[3]
		assert.Equal(t, 7, seven.Days)
		assert.InDelta(t, 10.0, seven.PriceChange, 1e-9)
		assert.Equal(t, 110.0, seven.HighestPrice)
		assert.Equal(t, 98.0, seven.LowestPrice)
		assert.Greater(t, seven.Volatility, 0.0)
	})

	t.Run("truncates horizons near the series end", func(t *testing.T) {
		out := forwardPerformance(closes, 5)
		require.Len(t, out, 2) // only 1- and 3-day windows fit
		assert.Equal(t, 1, out[0].Days)
		assert.Equal(t, 3, out[1].Days)
	})
}

func TestAggregate(t *testing.T) {
	matches := []Match{
		{FuturePerformance: []FuturePerformance{
			{Days: 1, PriceChangePercent: 1},
			{Days: 7, PriceChangePercent: 5},
		}},
		{FuturePerformance: []FuturePerformance{
			{Days: 1, PriceChangePercent: 3},
			{Days: 7, PriceChangePercent: -2},
		}},
	}

	p := aggregate(matches)
	assert.InDelta(t, 2.0, p.AverageReturns[1], 1e-9)
	assert.InDelta(t, 1.5, p.AverageReturns[7], 1e-9)
	assert.InDelta(t, 0.5, p.SuccessRate, 1e-9)
	assert.InDelta(t, 20.0, p.Confidence, 1e-9) // 2 matches / 10 * 100

	t.Run("confidence caps at 100", func(t *testing.T) {
		many := make([]Match, 25)
		assert.Equal(t, 100.0, aggregate(many).Confidence)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("strong upside wording at 70 percent", func(t *testing.T) {
		p := Prediction{SuccessRate: 0.75, AverageReturns: map[int]float64{7: 2.5}}
		assert.Contains(t, summarize(p, 8, 70, false), "strong upside")
	})

	t.Run("downside wording at 30 percent", func(t *testing.T) {
		p := Prediction{SuccessRate: 0.25, AverageReturns: map[int]float64{7: -1.5}}
		assert.Contains(t, summarize(p, 8, 70, false), "downside")
	})

	t.Run("relaxation note", func(t *testing.T) {
		p := Prediction{SuccessRate: 0.6, AverageReturns: map[int]float64{7: 1.0}}
		assert.Contains(t, summarize(p, 3, 50, true), "relaxed")
	})
}
