package vol

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// normalReturns draws n iid daily log returns with the given annualized vol.
func normalReturns(n int, annualVol float64, seed uint64) []float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: annualVol / math.Sqrt(TradingDays),
		Src:   rand.NewSource(seed),
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// simulateGarch generates a GARCH(1,1) series in scaled (x100) units.
func simulateGarch(n int, omega, alpha, beta float64, seed uint64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	out := make([]float64, n)
	variance := omega / (1 - alpha - beta)
	var prev float64
	for i := range out {
		if i > 0 {
			variance = omega + alpha*prev*prev + beta*variance
		}
		prev = math.Sqrt(variance) * dist.Rand()
		out[i] = prev
	}
	return out
}
