package indicator

import "math"

// Snapshot is the set of indicator values at one point in time. Nil fields
// mark indicators with no defined value yet; downstream scorers treat them
// as neutral contributions.
type Snapshot struct {
	RSI           *float64 `json:"rsi,omitempty"`
	MACD          *float64 `json:"macd,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`
	SMA5          *float64 `json:"sma5,omitempty"`
	SMA20         *float64 `json:"sma20,omitempty"`
	SMA50         *float64 `json:"sma50,omitempty"`
	EMA12         *float64 `json:"ema12,omitempty"`
	EMA26         *float64 `json:"ema26,omitempty"`
	BBUpper       *float64 `json:"bb_upper,omitempty"`
	BBMiddle      *float64 `json:"bb_middle,omitempty"`
	BBLower       *float64 `json:"bb_lower,omitempty"`
}

// Latest returns the most recent defined value of every indicator, scanning
// each array from the end. Consumers must use this rather than indexing the
// raw arrays so that NaN warm-up entries never reach the scorers.
func (s Series) Latest() Snapshot {
	return Snapshot{
		RSI:           latestValid(s.RSI),
		MACD:          latestValid(s.MACD.MACD),
		MACDSignal:    latestValid(s.MACD.Signal),
		MACDHistogram: latestValid(s.MACD.Histogram),
		SMA5:          latestValid(s.SMA.SMA5),
		SMA20:         latestValid(s.SMA.SMA20),
		SMA50:         latestValid(s.SMA.SMA50),
		EMA12:         latestValid(s.EMA.EMA12),
		EMA26:         latestValid(s.EMA.EMA26),
		BBUpper:       latestValid(s.Bollinger.Upper),
		BBMiddle:      latestValid(s.Bollinger.Middle),
		BBLower:       latestValid(s.Bollinger.Lower),
	}
}

// At returns the indicator values at index i, with NaN entries mapped to nil.
// Used by the pattern matcher to reconstruct historical regimes.
func (s Series) At(i int) Snapshot {
	return Snapshot{
		RSI:           valueAt(s.RSI, i),
		MACD:          valueAt(s.MACD.MACD, i),
		MACDSignal:    valueAt(s.MACD.Signal, i),
		MACDHistogram: valueAt(s.MACD.Histogram, i),
		SMA5:          valueAt(s.SMA.SMA5, i),
		SMA20:         valueAt(s.SMA.SMA20, i),
		SMA50:         valueAt(s.SMA.SMA50, i),
		EMA12:         valueAt(s.EMA.EMA12, i),
		EMA26:         valueAt(s.EMA.EMA26, i),
		BBUpper:       valueAt(s.Bollinger.Upper, i),
		BBMiddle:      valueAt(s.Bollinger.Middle, i),
		BBLower:       valueAt(s.Bollinger.Lower, i),
	}
}

func latestValid(values []float64) *float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			v := values[i]
			return &v
		}
	}
	return nil
}

func valueAt(values []float64, i int) *float64 {
	if i < 0 || i >= len(values) || math.IsNaN(values[i]) {
		return nil
	}
	v := values[i]
	return &v
}
