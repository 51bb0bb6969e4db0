package vol

import (
	"fmt"
	"math"
)

// TradingDays is the assumed number of trading days per year, used for
// annualization throughout.
const TradingDays = 252

// LogReturns converts a chronological price series into log returns
// r_t = ln(p_t / p_{t-1}). NaN entries are dropped before differencing;
// non-positive or infinite prices are rejected.
func LogReturns(prices []float64) ([]float64, error) {
	clean := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		if p <= 0 || math.IsInf(p, 0) {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("price %v is not a positive finite number", p)}
		}
		clean = append(clean, p)
	}
	if len(clean) < 2 {
		return nil, &InsufficientDataError{Required: 2, Actual: len(clean)}
	}
	out := make([]float64, len(clean)-1)
	for i := 1; i < len(clean); i++ {
		out[i-1] = math.Log(clean[i] / clean[i-1])
	}
	return out, nil
}
