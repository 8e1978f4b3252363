package indicator

import "math"

// SMA computes the simple moving average over the given period. The result
// is aligned to the input: out[i] is NaN for i < period-1, otherwise the
// arithmetic mean of prices[i-period+1..i].
func SMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA computes the exponential moving average with smoothing k = 2/(period+1).
// The series is seeded at index 0 with the first price, so every index is
// defined; there is no warm-up gap. Downstream scoring thresholds depend on
// this seeding, so it must not be replaced with an SMA seed.
func EMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}

// StdDev computes the population standard deviation of the given window.
func StdDev(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(window))
	return math.Sqrt(variance)
}

// Mean computes the arithmetic mean of the given values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
