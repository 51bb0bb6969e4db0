package vol

import (
	"fmt"
	"math"
)

// RealizedVol computes close-to-close volatility over the trailing window:
// the sample standard deviation of the last w returns, times sqrt(252) when
// annualizing.
func RealizedVol(returns []float64, window int, annualize bool) (float64, error) {
	if window < 2 {
		return 0, &InvalidInputError{Reason: fmt.Sprintf("window %d is below the minimum of 2", window)}
	}
	if len(returns) < window {
		return 0, &InsufficientDataError{Required: window, Actual: len(returns)}
	}
	sd := sampleStd(returns[len(returns)-window:])
	if annualize {
		sd *= math.Sqrt(TradingDays)
	}
	return sd, nil
}

// ParkinsonVol computes the annualized Parkinson high-low range volatility
// over the trailing window: sqrt( 252/(4 ln 2) * mean(ln(H/L)^2) ). A window
// with zero range everywhere yields exactly 0.
func ParkinsonVol(high, low []float64, window int) (float64, error) {
	if len(high) != len(low) {
		return 0, &InvalidInputError{Reason: fmt.Sprintf("high/low length mismatch: %d vs %d", len(high), len(low))}
	}
	if window < 1 {
		return 0, &InvalidInputError{Reason: fmt.Sprintf("window %d is below the minimum of 1", window)}
	}
	if len(high) < window {
		return 0, &InsufficientDataError{Required: window, Actual: len(high)}
	}
	var sum float64
	for i := len(high) - window; i < len(high); i++ {
		h, l := high[i], low[i]
		if h <= 0 || l <= 0 {
			return 0, &InvalidInputError{Reason: fmt.Sprintf("non-positive price at index %d", i)}
		}
		if h < l {
			return 0, &InvalidInputError{Reason: fmt.Sprintf("high %v below low %v at index %d", h, l, i)}
		}
		r := math.Log(h / l)
		sum += r * r
	}
	variance := sum / float64(window) / (4 * math.Ln2)
	return math.Sqrt(variance * TradingDays), nil
}

// sampleStd is the n-1 standard deviation. A window where every value is
// identical returns exactly zero; two-pass summation alone leaves an ulp of
// rounding there, so the flat case is detected up front.
func sampleStd(xs []float64) float64 {
	flat := true
	for _, x := range xs[1:] {
		if x != xs[0] {
			flat = false
			break
		}
	}
	if flat {
		return 0
	}
	n := float64(len(xs))
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / n
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}
