package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single daily OHLCV bar as consumed by the analysis engine.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered sequence of daily bars, ascending by date,
// with no duplicate dates.
type PriceSeries []PricePoint

// Closes extracts the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// Validate checks the structural invariants of the series: non-empty and
// strictly ascending dates. Short series are valid; the engine degrades to
// undefined indicator values instead of failing.
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("price series is empty")
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("price series dates not ascending at index %d (%s >= %s)",
				i, s[i-1].Date.Format("2006-01-02"), s[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// PriceDataDaily represents a stored daily OHLCV row for a stock.
type PriceDataDaily struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// PricePoint converts a stored row into the engine's bar representation.
func (p *PriceDataDaily) PricePoint() PricePoint {
	return PricePoint{
		Date:   p.Date,
		Open:   p.Open.InexactFloat64(),
		High:   p.High.InexactFloat64(),
		Low:    p.Low.InexactFloat64(),
		Close:  p.Close.InexactFloat64(),
		Volume: p.Volume,
	}
}

// NewPriceDataDaily builds a stored row from an engine bar.
func NewPriceDataDaily(symbol string, p PricePoint) *PriceDataDaily {
	return &PriceDataDaily{
		Symbol: symbol,
		Date:   p.Date,
		Open:   decimal.NewFromFloat(p.Open),
		High:   decimal.NewFromFloat(p.High),
		Low:    decimal.NewFromFloat(p.Low),
		Close:  decimal.NewFromFloat(p.Close),
		Volume: p.Volume,
	}
}
