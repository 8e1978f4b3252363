package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// series builds a daily price series from closes, one bar per weekday-less
// calendar day starting 2024-01-02.
func series(closes []float64) models.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100_000,
		}
	}
	return out
}

// vShape declines by downPct per day for downDays, then rises by upPct per
// day for upDays. The sharp reversal reliably produces at least one BUY.
func vShape(downDays, upDays int, downPct, upPct float64) []float64 {
	closes := make([]float64, 0, downDays+upDays)
	price := 100.0
	for i := 0; i < downDays; i++ {
		closes = append(closes, price)
		price *= 1 - downPct
	}
	for i := 0; i < upDays; i++ {
		closes = append(closes, price)
		price *= 1 + upPct
	}
	return closes
}

func TestRunValidation(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		_, err := Run(nil, DefaultConfig())
		require.Error(t, err)
	})

	t.Run("series shorter than warm-up", func(t *testing.T) {
		closes := make([]float64, 10)
		for i := range closes {
			closes[i] = 100
		}
		_, err := Run(series(closes), DefaultConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})

	t.Run("non-ascending dates", func(t *testing.T) {
		s := series(vShape(20, 20, 0.03, 0.03))
		s[5].Date = s[4].Date
		_, err := Run(s, DefaultConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not ascending")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.InitialCapital = 0
		_, err := Run(series(vShape(20, 20, 0.03, 0.03)), cfg)
		require.Error(t, err)

		cfg = DefaultConfig()
		cfg.RiskPerTrade = 1.5
		_, err = Run(series(vShape(20, 20, 0.03, 0.03)), cfg)
		require.Error(t, err)
	})
}

func TestRunMonotonicUptrend(t *testing.T) {
	// 60 days of noise-free rising prices: no stop-loss can trigger and the
	// account must never go below its starting capital.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	result, err := Run(series(closes), DefaultConfig())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Performance.FinalValue, DefaultConfig().InitialCapital)
	assert.Len(t, result.PortfolioValue, 60-15)
	for _, p := range result.PortfolioValue {
		assert.Greater(t, p.BuyAndHoldValue, 0.0)
	}
}

func TestRunVShape(t *testing.T) {
	cfg := DefaultConfig()
	result, err := Run(series(vShape(25, 35, 0.03, 0.03)), cfg)
	require.NoError(t, err)

	t.Run("the reversal produces at least one round trip", func(t *testing.T) {
		require.NotEmpty(t, result.Trades)
		assert.Equal(t, TradeTypeBuy, result.Trades[0].Type)
	})

	t.Run("trades strictly alternate BUY and SELL", func(t *testing.T) {
		for i, tr := range result.Trades {
			want := TradeTypeBuy
			if i%2 == 1 {
				want = TradeTypeSell
			}
			assert.Equal(t, want, tr.Type, "trade %d", i)
			assert.GreaterOrEqual(t, tr.Shares, 0)
		}
	})

	t.Run("entries meet the confidence gate", func(t *testing.T) {
		for _, tr := range result.Trades {
			if tr.Type == TradeTypeBuy {
				assert.GreaterOrEqual(t, tr.Confidence, 60.0)
			}
		}
	})

	t.Run("cash conservation reconciles the trade log", func(t *testing.T) {
		cash := cfg.InitialCapital
		for _, tr := range result.Trades {
			if tr.Type == TradeTypeBuy {
				cash -= tr.Value + tr.Value*cfg.CommissionRate
			} else {
				cash += tr.Value - tr.Value*cfg.CommissionRate
			}
		}
		assert.InDelta(t, cash, result.Performance.FinalValue, 1e-6)
	})

	t.Run("performance figures are internally consistent", func(t *testing.T) {
		perf := result.Performance
		assert.InDelta(t, (perf.FinalValue-cfg.InitialCapital)/cfg.InitialCapital, perf.TotalReturn, 1e-9)
		assert.GreaterOrEqual(t, perf.WinRate, 0.0)
		assert.LessOrEqual(t, perf.WinRate, 1.0)
		assert.GreaterOrEqual(t, perf.MaxDrawdown, 0.0)
		assert.False(t, math.IsNaN(perf.SharpeRatio))
		assert.Equal(t, len(result.Trades), perf.TotalTrades)
	})
}

func TestForcedLiquidation(t *testing.T) {
	// Disable stop-loss and take-profit so an entered position can only be
	// closed by a sell signal or the end of the series. On a steady rise
	// after the V-turn no sell signal fires, so the position is carried to
	// the end and force-liquidated with the HOLD/50 sentinel.
	cfg := DefaultConfig()
	cfg.StopLossPercent = 10.0
	cfg.TakeProfitPercent = 10.0

	result, err := Run(series(vShape(25, 20, 0.03, 0.03)), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Trades)

	last := result.Trades[len(result.Trades)-1]
	assert.Equal(t, TradeTypeSell, last.Type)
	assert.Equal(t, signal.Hold, last.Signal)
	assert.Equal(t, 50.0, last.Confidence)

	t.Run("final portfolio point equals final cash", func(t *testing.T) {
		lastPoint := result.PortfolioValue[len(result.PortfolioValue)-1]
		assert.InDelta(t, result.Performance.FinalValue, lastPoint.Value, 1e-6)
	})
}

func TestStopLoss(t *testing.T) {
	// A V-shaped recovery that collapses again: the entry from the reversal
	// must be stopped out rather than ridden to the bottom.
	closes := vShape(25, 8, 0.03, 0.03)
	price := closes[len(closes)-1]
	for i := 0; i < 20; i++ {
		price *= 0.94
		closes = append(closes, price)
	}

	cfg := DefaultConfig()
	cfg.TakeProfitPercent = 10.0 // keep take-profit out of the way

	result, err := Run(series(closes), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Trades)

	// Find the first round trip and verify the exit loss is close to the
	// stop distance, not to the full crash.
	require.GreaterOrEqual(t, len(result.Trades), 2)
	entry, exit := result.Trades[0], result.Trades[1]
	require.Equal(t, TradeTypeBuy, entry.Type)
	require.Equal(t, TradeTypeSell, exit.Type)
	loss := (exit.Price - entry.Price) / entry.Price
	assert.Less(t, loss, 0.0)
	assert.Greater(t, loss, -0.20, "stop-loss should cut losses well before the bottom")
}

func TestPerformancePairing(t *testing.T) {
	day := func(i int) time.Time { return time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC) }
	trades := []Trade{
		{Date: day(0), Type: TradeTypeBuy, Value: 1000},
		{Date: day(1), Type: TradeTypeSell, Value: 1100}, // +100
		{Date: day(2), Type: TradeTypeBuy, Value: 1100},
		{Date: day(3), Type: TradeTypeSell, Value: 1000}, // -100
		{Date: day(4), Type: TradeTypeBuy, Value: 900},   // unpaired open trade
	}
	portfolio := []PortfolioPoint{
		{Date: day(0), Value: 1000},
		{Date: day(1), Value: 1100},
		{Date: day(2), Value: 1050},
	}

	cfg := DefaultConfig()
	cfg.InitialCapital = 1000
	perf := computePerformance(trades, portfolio, []float64{100, 110}, 1000, cfg)

	assert.Equal(t, 0.5, perf.WinRate)
	assert.Equal(t, 1, perf.WinningTrades)
	assert.Equal(t, 100.0, perf.AverageWin)
	assert.Equal(t, -100.0, perf.AverageLoss)
	assert.InDelta(t, 0.10, perf.BuyAndHoldReturn, 1e-9)
	assert.InDelta(t, (1100.0-1050.0)/1100.0, perf.MaxDrawdown, 1e-9)
}
