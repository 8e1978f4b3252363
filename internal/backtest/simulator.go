// Package backtest replays the indicator engine and signal scorer day by
// day over a price history, simulating a single-position long-only account
// with stop-loss, take-profit and commission accounting.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// warmupDays is the number of leading bars skipped so the indicators have
// enough history before the first simulated day.
const warmupDays = 15

// minConfidence gates signal-driven entries and exits.
const minConfidence = 60

// Config holds the simulation parameters. Rate and percent fields are
// fractions: a CommissionRate of 0.001 is 0.1%, a StopLossPercent of 0.05
// exits at a 5% loss from entry.
type Config struct {
	InitialCapital    float64 `json:"initial_capital"`
	CommissionRate    float64 `json:"commission_rate"`
	RiskPerTrade      float64 `json:"risk_per_trade"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
}

// DefaultConfig returns the standard simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital:    1_000_000,
		CommissionRate:    0.001,
		RiskPerTrade:      0.95,
		StopLossPercent:   0.05,
		TakeProfitPercent: 0.10,
	}
}

func (c Config) validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.2f", c.InitialCapital)
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 1 {
		return fmt.Errorf("risk per trade must be in (0, 1], got %.2f", c.RiskPerTrade)
	}
	if c.CommissionRate < 0 {
		return fmt.Errorf("commission rate must not be negative, got %.4f", c.CommissionRate)
	}
	return nil
}

// Trade is one executed order in the simulation log.
type Trade struct {
	Date       time.Time    `json:"date"`
	Type       string       `json:"type"` // models.TradeTypeBuy / models.TradeTypeSell
	Price      float64      `json:"price"`
	Signal     signal.Level `json:"signal"`
	Confidence float64      `json:"confidence"`
	Shares     int          `json:"shares"`
	Value      float64      `json:"value"`
}

// Trade type constants.
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// PortfolioPoint is one day's portfolio value next to the buy-and-hold
// baseline.
type PortfolioPoint struct {
	Date            time.Time `json:"date"`
	Value           float64   `json:"value"`
	BuyAndHoldValue float64   `json:"buy_and_hold_value"`
}

// Performance aggregates the post-hoc statistics of one simulation.
type Performance struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	WinRate          float64 `json:"win_rate"`
	AverageWin       float64 `json:"average_win"`
	AverageLoss      float64 `json:"average_loss"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return"`
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	FinalValue       float64 `json:"final_value"`
}

// Result is the full outcome of one simulation run.
type Result struct {
	Trades         []Trade          `json:"trades"`
	Performance    Performance      `json:"performance"`
	PortfolioValue []PortfolioPoint `json:"portfolio_value"`
}

// position is the NONE/LONG state of the simulated account.
type position struct {
	shares     int
	entryPrice float64
}

func (p *position) long() bool { return p.shares > 0 }

// Run simulates the signal strategy over the given price series. The series
// must be strictly ascending by date and longer than the warm-up window.
// Indicators for day i are computed from prices[0..i] only.
func Run(prices models.PriceSeries, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if len(prices) <= warmupDays {
		return nil, fmt.Errorf("price series too short for backtest: need more than %d bars, got %d", warmupDays, len(prices))
	}

	closes := prices.Closes()
	cash := cfg.InitialCapital
	var pos position
	trades := make([]Trade, 0, 16)
	portfolio := make([]PortfolioPoint, 0, len(prices)-warmupDays)

	// Buy-and-hold baseline: the initial capital converted to (fractional)
	// shares at the day-0 close.
	bhShares := cfg.InitialCapital / closes[0]

	for i := warmupDays; i < len(prices); i++ {
		price := closes[i]
		date := prices[i].Date

		series := indicator.Compute(closes[:i+1])
		analysis := signal.Score(price, series.Latest())

		value := cash
		if pos.long() {
			value += float64(pos.shares) * price
		}
		portfolio = append(portfolio, PortfolioPoint{
			Date:            date,
			Value:           value,
			BuyAndHoldValue: bhShares * price,
		})

		// One action per day: risk exits first, then signal exits/entries.
		if pos.long() {
			change := (price - pos.entryPrice) / pos.entryPrice
			if change <= -cfg.StopLossPercent || change >= cfg.TakeProfitPercent {
				cash += sell(&pos, &trades, date, price, analysis, cfg.CommissionRate)
				continue
			}
		}

		if analysis.Confidence < minConfidence {
			continue
		}
		switch analysis.Signal {
		case signal.StrongBuy, signal.Buy:
			if !pos.long() {
				cash -= buy(&pos, &trades, date, price, analysis, cash, cfg)
			}
		case signal.StrongSell, signal.Sell:
			if pos.long() {
				cash += sell(&pos, &trades, date, price, analysis, cfg.CommissionRate)
			}
		}
	}

	// Force-liquidate any open position at the final close. The HOLD /
	// confidence-50 labels mark the exit as forced rather than organic.
	if pos.long() {
		last := len(prices) - 1
		forced := signal.Analysis{Signal: signal.Hold, Confidence: 50}
		cash += sell(&pos, &trades, prices[last].Date, closes[last], forced, cfg.CommissionRate)
		portfolio[len(portfolio)-1].Value = cash
	}

	return &Result{
		Trades:         trades,
		Performance:    computePerformance(trades, portfolio, closes, cash, cfg),
		PortfolioValue: portfolio,
	}, nil
}

// buy sizes a position as riskPerTrade of current cash, subtracting the
// estimated commission before the whole-share count is computed. Returns
// the cash spent including commission.
func buy(pos *position, trades *[]Trade, date time.Time, price float64, analysis signal.Analysis, cash float64, cfg Config) float64 {
	budget := cash * cfg.RiskPerTrade
	budget -= budget * cfg.CommissionRate
	shares := int(math.Floor(budget / price))
	if shares <= 0 {
		return 0
	}

	cost := float64(shares) * price
	commission := cost * cfg.CommissionRate
	pos.shares = shares
	pos.entryPrice = price

	*trades = append(*trades, Trade{
		Date:       date,
		Type:       TradeTypeBuy,
		Price:      price,
		Signal:     analysis.Signal,
		Confidence: analysis.Confidence,
		Shares:     shares,
		Value:      cost,
	})
	return cost + commission
}

// sell liquidates the entire position, returning the proceeds net of
// commission.
func sell(pos *position, trades *[]Trade, date time.Time, price float64, analysis signal.Analysis, commissionRate float64) float64 {
	proceeds := float64(pos.shares) * price
	commission := proceeds * commissionRate

	*trades = append(*trades, Trade{
		Date:       date,
		Type:       TradeTypeSell,
		Price:      price,
		Signal:     analysis.Signal,
		Confidence: analysis.Confidence,
		Shares:     pos.shares,
		Value:      proceeds,
	})
	pos.shares = 0
	pos.entryPrice = 0
	return proceeds - commission
}
