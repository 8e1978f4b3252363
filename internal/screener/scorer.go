// Package screener scores fundamentals records on a 0-100 scale and applies
// screening filters. Each sub-score is an independently capped sum of
// discrete bucket awards; absent fields contribute zero and never penalize.
package screener

// Sub-score caps.
const (
	GrowthCap    = 30
	ValueCap     = 25
	FinancialCap = 20
	DividendCap  = 10
	TechnicalCap = 15
)

// ScoreBreakdown is the capped sub-score decomposition of one record.
type ScoreBreakdown struct {
	Growth    int `json:"growth"`
	Value     int `json:"value"`
	Financial int `json:"financial"`
	Dividend  int `json:"dividend"`
	Technical int `json:"technical"`
	Total     int `json:"total"`
}

// Score computes the full fundamental score breakdown. The aggregation is
// pure and order-independent; the only composite bucket is the payout-ratio
// sweet spot inside the dividend sub-score.
func Score(f Fundamentals) ScoreBreakdown {
	b := ScoreBreakdown{
		Growth:    capScore(growthScore(f), GrowthCap),
		Value:     capScore(valueScore(f), ValueCap),
		Financial: capScore(financialScore(f), FinancialCap),
		Dividend:  capScore(dividendScore(f), DividendCap),
		Technical: capScore(technicalScore(f), TechnicalCap),
	}
	b.Total = b.Growth + b.Value + b.Financial + b.Dividend + b.Technical
	return b
}

func growthScore(f Fundamentals) int {
	score := 0
	score += bucketMin(f.EPSGrowth, []threshold{{20, 8}, {15, 6}, {10, 4}, {5, 2}})
	score += bucketMin(f.RevenueGrowth, []threshold{{15, 8}, {10, 6}, {5, 3}})
	score += bucketMin(f.ROE, []threshold{{20, 8}, {15, 6}, {10, 4}})
	score += bucketMin(f.ForecastEPSGrowth, []threshold{{15, 6}, {8, 4}, {0, 2}})
	return score
}

func valueScore(f Fundamentals) int {
	score := 0
	score += bucketMaxPositive(f.PER, []threshold{{10, 10}, {15, 7}, {20, 4}})
	score += bucketMaxPositive(f.PBR, []threshold{{1, 8}, {1.5, 5}, {2, 3}})
	score += bucketMaxPositive(f.PSR, []threshold{{1, 7}, {2, 4}, {4, 2}})
	return score
}

func financialScore(f Fundamentals) int {
	score := 0
	score += bucketMin(f.EquityRatio, []threshold{{60, 8}, {40, 5}, {25, 3}})
	score += bucketMin(f.CurrentRatio, []threshold{{2, 6}, {1.5, 4}, {1, 2}})
	score += bucketMaxPositive(f.DebtToEquity, []threshold{{0.3, 6}, {0.7, 4}, {1.5, 2}})
	return score
}

// dividendScore awards the payout-ratio sweet spot of 30-60% more than
// either extreme: too low signals a token dividend, too high an unsustainable
// one.
func dividendScore(f Fundamentals) int {
	score := 0
	score += bucketMin(f.DividendYield, []threshold{{4, 5}, {3, 4}, {2, 2}, {1, 1}})
	if f.PayoutRatio != nil {
		p := *f.PayoutRatio
		switch {
		case p >= 30 && p <= 60:
			score += 5
		case (p >= 20 && p < 30) || (p > 60 && p <= 80):
			score += 3
		case p > 0:
			score += 1
		}
	}
	return score
}

func technicalScore(f Fundamentals) int {
	score := 0
	if f.RSI != nil {
		rsi := *f.RSI
		switch {
		case rsi >= 40 && rsi <= 60:
			score += 5
		case rsi >= 30 && rsi <= 70:
			score += 3
		}
	}
	if f.PriceVsSMA20 != nil && *f.PriceVsSMA20 > 0 {
		score += 5
	}
	score += bucketMin(f.VolumeRatio, []threshold{{1.5, 5}, {1, 3}})
	return score
}

type threshold struct {
	limit float64
	award int
}

// bucketMin awards the first bucket whose lower bound the value meets.
// Thresholds must be ordered descending.
func bucketMin(field *float64, buckets []threshold) int {
	if field == nil {
		return 0
	}
	for _, b := range buckets {
		if *field >= b.limit {
			return b.award
		}
	}
	return 0
}

// bucketMaxPositive awards the first bucket whose upper bound contains the
// value, skipping non-positive values (a negative PER is not "cheap").
// Thresholds must be ordered ascending.
func bucketMaxPositive(field *float64, buckets []threshold) int {
	if field == nil || *field <= 0 {
		return 0
	}
	for _, b := range buckets {
		if *field <= b.limit {
			return b.award
		}
	}
	return 0
}

func capScore(score, cap int) int {
	if score < 0 {
		return 0
	}
	if score > cap {
		return cap
	}
	return score
}
