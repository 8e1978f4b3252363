package backtest

import (
	"math"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
)

// tradingDaysPerYear is the annualization base for the return figure.
const tradingDaysPerYear = 252

// computePerformance derives the aggregate statistics from the trade log
// and portfolio curve.
//
// Win-rate statistics pair trades two at a time in log order (BUY then
// SELL). The state machine guarantees strict alternation, which this
// pairing relies on.
func computePerformance(trades []Trade, portfolio []PortfolioPoint, closes []float64, finalValue float64, cfg Config) Performance {
	perf := Performance{
		TotalTrades: len(trades),
		FinalValue:  finalValue,
	}

	perf.TotalReturn = (finalValue - cfg.InitialCapital) / cfg.InitialCapital
	if days := len(portfolio); days > 0 {
		perf.AnnualizedReturn = math.Pow(1+perf.TotalReturn, tradingDaysPerYear/float64(days)) - 1
	}

	var wins, losses int
	var winSum, lossSum float64
	for i := 0; i+1 < len(trades); i += 2 {
		entry, exit := trades[i], trades[i+1]
		pnl := exit.Value - entry.Value
		if pnl > 0 {
			wins++
			winSum += pnl
		} else {
			losses++
			lossSum += pnl
		}
	}
	if pairs := wins + losses; pairs > 0 {
		perf.WinRate = float64(wins) / float64(pairs)
	}
	if wins > 0 {
		perf.AverageWin = winSum / float64(wins)
	}
	if losses > 0 {
		perf.AverageLoss = lossSum / float64(losses)
	}
	perf.WinningTrades = wins

	perf.MaxDrawdown = maxDrawdown(portfolio)
	perf.SharpeRatio = sharpeRatio(portfolio)
	if len(closes) > 0 && closes[0] != 0 {
		perf.BuyAndHoldReturn = (closes[len(closes)-1] - closes[0]) / closes[0]
	}
	return perf
}

// maxDrawdown returns the largest peak-to-trough decline of the portfolio
// curve as a fraction of the peak.
func maxDrawdown(portfolio []PortfolioPoint) float64 {
	var peak, maxDD float64
	for _, p := range portfolio {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			dd := (peak - p.Value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio is the simplified daily-return Sharpe: mean daily return over
// its population standard deviation, with no annualization factor (the
// factors cancel in this formulation and are deliberately left out).
func sharpeRatio(portfolio []PortfolioPoint) float64 {
	if len(portfolio) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(portfolio)-1)
	for i := 1; i < len(portfolio); i++ {
		prev := portfolio[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (portfolio[i].Value-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}
	sigma := indicator.StdDev(returns)
	if sigma == 0 {
		return 0
	}
	return indicator.Mean(returns) / sigma
}
