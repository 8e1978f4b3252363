// Package indicator computes technical indicator series from daily closing
// prices. Every output array is aligned to the input: out[i] depends only on
// prices[0..i], with NaN marking entries where not enough history exists.
package indicator

import "math"

// Default indicator periods.
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerStdDev  = 2.0
)

// MACDSeries holds the MACD line, signal line and histogram.
type MACDSeries struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"signal"`
	Histogram []float64 `json:"histogram"`
}

// SMASeries holds the three simple moving averages used by the scorer.
type SMASeries struct {
	SMA5  []float64 `json:"sma5"`
	SMA20 []float64 `json:"sma20"`
	SMA50 []float64 `json:"sma50"`
}

// EMASeries holds the two exponential moving averages used by MACD and the
// pattern matcher.
type EMASeries struct {
	EMA12 []float64 `json:"ema12"`
	EMA26 []float64 `json:"ema26"`
}

// BollingerSeries holds the three Bollinger band lines.
type BollingerSeries struct {
	Upper  []float64 `json:"upper"`
	Middle []float64 `json:"middle"`
	Lower  []float64 `json:"lower"`
}

// Series is the full set of indicator arrays for one price series.
type Series struct {
	RSI       []float64       `json:"rsi"`
	MACD      MACDSeries      `json:"macd"`
	SMA       SMASeries       `json:"sma"`
	EMA       EMASeries       `json:"ema"`
	Bollinger BollingerSeries `json:"bollinger"`
}

// Len returns the length of the underlying price series.
func (s Series) Len() int { return len(s.RSI) }

// Compute calculates all indicator series for the given closing prices.
func Compute(closes []float64) Series {
	macd, signal, histogram := MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	upper, middle, lower := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	return Series{
		RSI: RSI(closes, RSIPeriod),
		MACD: MACDSeries{
			MACD:      macd,
			Signal:    signal,
			Histogram: histogram,
		},
		SMA: SMASeries{
			SMA5:  SMA(closes, 5),
			SMA20: SMA(closes, 20),
			SMA50: SMA(closes, 50),
		},
		EMA: EMASeries{
			EMA12: EMA(closes, MACDFastPeriod),
			EMA26: EMA(closes, MACDSlowPeriod),
		},
		Bollinger: BollingerSeries{
			Upper:  upper,
			Middle: middle,
			Lower:  lower,
		},
	}
}

// RSI computes the relative strength index with a simple (not Wilder
// smoothed) average of gains and losses over the trailing window. Entries
// before index `period` are NaN. A window with zero average loss yields 100.
func RSI(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := prices[j] - prices[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the MACD line (fast EMA minus slow EMA), the signal line
// (EMA of the MACD line over signalPeriod) and the histogram.
//
// The signal line is computed over the non-NaN MACD values and realigned to
// the original index positions. Because EMA here is defined from index 0
// this compaction never drops anything; the step is kept so the alignment
// contract holds even if the MACD line ever carries gaps.
func MACD(prices []float64, fast, slow, signalPeriod int) (macd, signal, histogram []float64) {
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	macd = make([]float64, len(prices))
	for i := range macd {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			macd[i] = math.NaN()
			continue
		}
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	// Compact the defined MACD values, run the signal EMA over them, then
	// scatter the results back onto the original positions.
	compact := make([]float64, 0, len(macd))
	positions := make([]int, 0, len(macd))
	for i, v := range macd {
		if !math.IsNaN(v) {
			compact = append(compact, v)
			positions = append(positions, i)
		}
	}
	compactSignal := EMA(compact, signalPeriod)

	signal = make([]float64, len(prices))
	histogram = make([]float64, len(prices))
	for i := range signal {
		signal[i] = math.NaN()
		histogram[i] = math.NaN()
	}
	for k, pos := range positions {
		signal[pos] = compactSignal[k]
		histogram[pos] = macd[pos] - compactSignal[k]
	}
	return macd, signal, histogram
}

// Bollinger computes the Bollinger bands: middle = SMA(period), upper/lower
// = middle +/- mult * population standard deviation of the trailing window.
// Entries before period-1 are NaN.
func Bollinger(prices []float64, period int, mult float64) (upper, middle, lower []float64) {
	middle = SMA(prices, period)
	upper = make([]float64, len(prices))
	lower = make([]float64, len(prices))
	for i := range prices {
		if i < period-1 {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		sigma := StdDev(prices[i-period+1 : i+1])
		upper[i] = middle[i] + mult*sigma
		lower[i] = middle[i] - mult*sigma
	}
	return upper, middle, lower
}
