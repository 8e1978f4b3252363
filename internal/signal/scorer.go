// Package signal maps a point-in-time indicator snapshot onto a composite
// buy/sell signal. Missing indicator data degrades to a neutral contribution;
// scoring never fails.
package signal

import (
	"fmt"
	"math"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
)

// Level is the 5-level signal classification.
type Level string

const (
	StrongBuy  Level = "STRONG_BUY"
	Buy        Level = "BUY"
	Hold       Level = "HOLD"
	Sell       Level = "SELL"
	StrongSell Level = "STRONG_SELL"
)

// RiskLevel is the coarse risk classification attached to an analysis.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Composite weights per sub-indicator. A sub-indicator with missing data
// scores 0 but keeps its weight in the denominator, diluting the composite
// rather than excluding itself.
const (
	weightRSI       = 1.0
	weightMACD      = 1.2
	weightMA        = 1.1
	weightBollinger = 0.9
)

// Scores holds the four bounded sub-indicator scores.
type Scores struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	MovingAverage  float64 `json:"moving_average"`
	BollingerBands float64 `json:"bollinger_bands"`
}

// Analysis is the scored signal for one symbol at one point in time.
type Analysis struct {
	OverallScore     float64   `json:"overall_score"`
	Signal           Level     `json:"signal"`
	Confidence       float64   `json:"confidence"`
	RiskLevel        RiskLevel `json:"risk_level"`
	IndividualScores Scores    `json:"individual_scores"`
	Reasons          []string  `json:"reasons"`
	Recommendation   string    `json:"recommendation"`
}

// Score computes the full signal analysis for the given price and snapshot.
func Score(price float64, snap indicator.Snapshot) Analysis {
	var scores Scores
	reasons := make([]string, 0, 4)

	rsiScore, rsiReason, rsiOK := scoreRSI(snap)
	scores.RSI = rsiScore
	if rsiOK {
		reasons = append(reasons, rsiReason)
	}

	macdScore, macdReason, macdOK := scoreMACD(snap)
	scores.MACD = macdScore
	if macdOK {
		reasons = append(reasons, macdReason)
	}

	maScore, maReason, maOK := scoreMovingAverages(price, snap)
	scores.MovingAverage = maScore
	if maOK {
		reasons = append(reasons, maReason)
	}

	bbScore, bbReason, bbOK := scoreBollinger(price, snap)
	scores.BollingerBands = bbScore
	if bbOK {
		reasons = append(reasons, bbReason)
	}

	totalWeight := weightRSI + weightMACD + weightMA + weightBollinger
	overall := round2((scores.RSI*weightRSI +
		scores.MACD*weightMACD +
		scores.MovingAverage*weightMA +
		scores.BollingerBands*weightBollinger) / totalWeight)

	level := classify(overall)
	return Analysis{
		OverallScore:     overall,
		Signal:           level,
		Confidence:       confidence(level, overall),
		RiskLevel:        riskLevel(level),
		IndividualScores: scores,
		Reasons:          reasons,
		Recommendation:   recommendation(level),
	}
}

// scoreRSI maps RSI onto [-25, +25] via fixed threshold buckets.
func scoreRSI(snap indicator.Snapshot) (float64, string, bool) {
	if snap.RSI == nil {
		return 0, "", false
	}
	rsi := *snap.RSI
	switch {
	case rsi <= 20:
		return 25, fmt.Sprintf("RSI %.1f: deeply oversold", rsi), true
	case rsi <= 30:
		return 15, fmt.Sprintf("RSI %.1f: oversold", rsi), true
	case rsi <= 40:
		return 5, fmt.Sprintf("RSI %.1f: below neutral", rsi), true
	case rsi >= 80:
		return -25, fmt.Sprintf("RSI %.1f: extremely overbought", rsi), true
	case rsi >= 70:
		return -15, fmt.Sprintf("RSI %.1f: overbought", rsi), true
	case rsi >= 60:
		return -5, fmt.Sprintf("RSI %.1f: above neutral", rsi), true
	default:
		return 0, fmt.Sprintf("RSI %.1f: neutral", rsi), true
	}
}

// scoreMACD awards +/-10 for the cross direction plus +/-8 or +/-15 for the
// histogram depending on sign and magnitude (|histogram| > 0.5 scores the
// larger bucket), clamped into [-25, +25].
func scoreMACD(snap indicator.Snapshot) (float64, string, bool) {
	if snap.MACD == nil || snap.MACDSignal == nil {
		return 0, "", false
	}
	macd, sig := *snap.MACD, *snap.MACDSignal

	score := -10.0
	direction := "bearish"
	if macd > sig {
		score = 10
		direction = "bullish"
	}

	if snap.MACDHistogram != nil {
		hist := *snap.MACDHistogram
		switch {
		case hist > 0.5:
			score += 15
		case hist > 0:
			score += 8
		case hist < -0.5:
			score -= 15
		case hist < 0:
			score -= 8
		}
	}
	score = clamp(score, -25, 25)
	return score, fmt.Sprintf("MACD %s cross (%.3f vs %.3f)", direction, macd, sig), true
}

// scoreMovingAverages awards +/-10 for SMA5 vs SMA20 order, +/-8 for price
// vs SMA5, and +/-7 for SMA20 vs SMA50 when SMA50 exists, clamped into
// [-25, +25].
func scoreMovingAverages(price float64, snap indicator.Snapshot) (float64, string, bool) {
	if snap.SMA5 == nil || snap.SMA20 == nil {
		return 0, "", false
	}
	sma5, sma20 := *snap.SMA5, *snap.SMA20

	score := -10.0
	trend := "bearish"
	if sma5 > sma20 {
		score = 10
		trend = "bullish"
	}

	if price > sma5 {
		score += 8
	} else {
		score -= 8
	}

	if snap.SMA50 != nil {
		if sma20 > *snap.SMA50 {
			score += 7
		} else {
			score -= 7
		}
	}
	score = clamp(score, -25, 25)
	return score, fmt.Sprintf("Moving averages %s (SMA5 %.2f, SMA20 %.2f)", trend, sma5, sma20), true
}

// scoreBollinger maps the relative band position onto [-20, +20]. When the
// band has zero width the position is 0 for price at or below the lower
// band and 1 otherwise, so a flat series lands in the oversold extreme
// bucket deterministically.
func scoreBollinger(price float64, snap indicator.Snapshot) (float64, string, bool) {
	if snap.BBUpper == nil || snap.BBLower == nil {
		return 0, "", false
	}
	upper, lower := *snap.BBUpper, *snap.BBLower

	var position float64
	if upper == lower {
		if price <= lower {
			position = 0
		} else {
			position = 1
		}
	} else {
		position = (price - lower) / (upper - lower)
	}

	var score float64
	switch {
	case position <= 0.1:
		score = 20
	case position <= 0.2:
		score = 15
	case position >= 0.9:
		score = -20
	case position >= 0.8:
		score = -15
	case position >= 0.4 && position <= 0.6:
		score = 0
	case position < 0.4:
		score = 5
	default:
		score = -5
	}
	return score, fmt.Sprintf("Bollinger band position %.0f%%", position*100), true
}

// Classification thresholds on the composite score.
func classify(score float64) Level {
	switch {
	case score >= 15:
		return StrongBuy
	case score >= 5:
		return Buy
	case score >= -5:
		return Hold
	case score >= -15:
		return Sell
	default:
		return StrongSell
	}
}

// confidence anchors on the class boundary: strong signals cap at 95,
// ordinary buy/sell at 85, HOLD is 50 + 2|score| uncapped.
func confidence(level Level, score float64) float64 {
	abs := math.Abs(score)
	switch level {
	case StrongBuy, StrongSell:
		return math.Min(95, 70+2*(abs-15))
	case Buy, Sell:
		return math.Min(85, 60+2*(abs-5))
	default:
		return 50 + 2*abs
	}
}

func riskLevel(level Level) RiskLevel {
	switch level {
	case StrongSell:
		return RiskHigh
	case Hold:
		return RiskLow
	default:
		return RiskMedium
	}
}

func recommendation(level Level) string {
	switch level {
	case StrongBuy:
		return "Strong buy: multiple indicators aligned bullish"
	case Buy:
		return "Buy: indicators lean bullish"
	case Sell:
		return "Sell: indicators lean bearish"
	case StrongSell:
		return "Strong sell: multiple indicators aligned bearish"
	default:
		return "Hold: no clear directional edge"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
