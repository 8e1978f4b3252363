package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common indicator type constants
const (
	IndicatorRSI14    = "RSI_14"
	IndicatorMACD     = "MACD"
	IndicatorMACDSig  = "MACD_SIGNAL"
	IndicatorMACDHist = "MACD_HIST"
	IndicatorSMA5     = "SMA_5"
	IndicatorSMA20    = "SMA_20"
	IndicatorSMA50    = "SMA_50"
	IndicatorEMA12    = "EMA_12"
	IndicatorEMA26    = "EMA_26"
	IndicatorBBUpper  = "BB_UPPER"
	IndicatorBBMiddle = "BB_MIDDLE"
	IndicatorBBLower  = "BB_LOWER"
)

// TechnicalIndicator represents a calculated technical indicator value
// persisted for one symbol on one date.
type TechnicalIndicator struct {
	ID            int             `json:"id"`
	Symbol        string          `json:"symbol"`
	Date          time.Time       `json:"date"`
	IndicatorType string          `json:"indicator_type"`
	Value         decimal.Decimal `json:"value"`
	Timeframe     string          `json:"timeframe"`
	CreatedAt     time.Time       `json:"created_at"`
}
