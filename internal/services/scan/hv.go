package scan

import (
	"VolPulse/internal/services/vol"
)

// HVSeries computes a rolling annualized close-to-close volatility series
// from a price series: one value per full window ending at each return index.
// Returns nil when the series is too short for a single window.
func HVSeries(prices []float64, window int) []float64 {
	returns, err := vol.LogReturns(prices)
	if err != nil {
		return nil
	}
	if window < 2 || len(returns) < window {
		return nil
	}
	out := make([]float64, 0, len(returns)-window+1)
	for i := window; i <= len(returns); i++ {
		v, err := vol.RealizedVol(returns[:i], window, true)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
