package vol

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/service"
)

const (
	fitMaxIterations = 2000
	// Large finite objective value standing in for +Inf inside the
	// infeasible region; Nelder-Mead backs away from it.
	fitPenalty     = 1e10
	maxPersistence = 0.999
)

// GonumFitter estimates GARCH(1,1) parameters by minimizing the Gaussian
// negative log-likelihood with Nelder-Mead. Parameter constraints (omega > 0,
// alpha >= 0, beta >= 0, alpha+beta < 1) are enforced through a penalty so
// the simplex stays unconstrained. The starting point is fixed, so the fit is
// deterministic for identical input.
type GonumFitter struct{}

func NewGonumFitter() *GonumFitter { return &GonumFitter{} }

var _ service.ModelFitter = (*GonumFitter)(nil)

func (g *GonumFitter) FitGARCH(returns []float64) (models.GarchFit, error) {
	sv := sampleVariance(returns)
	if !isFinite(sv) || sv <= 0 {
		return models.GarchFit{}, &FitError{Reason: "return series has zero variance"}
	}

	nll := func(x []float64) float64 {
		omega, alpha, beta := x[0], x[1], x[2]
		if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= maxPersistence {
			return fitPenalty
		}
		variance := sv
		ll := 0.0
		for i, r := range returns {
			if i > 0 {
				prev := returns[i-1]
				variance = omega + alpha*prev*prev + beta*variance
			}
			if variance <= 0 {
				return fitPenalty
			}
			ll += -0.5*math.Log(2*math.Pi) - 0.5*math.Log(variance) - 0.5*r*r/variance
		}
		if !isFinite(ll) {
			return fitPenalty
		}
		return -ll
	}

	problem := optimize.Problem{Func: nll}
	start := []float64{0.05 * sv, 0.1, 0.85}
	settings := &optimize.Settings{MajorIterations: fitMaxIterations}

	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if err != nil {
		return models.GarchFit{}, &FitError{Reason: err.Error()}
	}
	if err := result.Status.Err(); err != nil {
		return models.GarchFit{}, &FitError{Reason: err.Error()}
	}
	if result.F >= fitPenalty {
		return models.GarchFit{}, &FitError{Reason: "optimizer terminated in the infeasible region"}
	}

	omega, alpha, beta := result.X[0], result.X[1], result.X[2]
	if !isFinite(omega) || !isFinite(alpha) || !isFinite(beta) {
		return models.GarchFit{}, &FitError{Reason: "optimizer returned non-finite parameters"}
	}

	// Rebuild the in-sample conditional-variance path at the optimum.
	path := make([]float64, len(returns))
	variance := sv
	path[0] = variance
	for i := 1; i < len(returns); i++ {
		prev := returns[i-1]
		variance = omega + alpha*prev*prev + beta*variance
		path[i] = variance
	}

	return models.GarchFit{
		Omega:        omega,
		Alpha:        alpha,
		Beta:         beta,
		VariancePath: path,
		NegLogLik:    result.F,
	}, nil
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd := sampleStd(xs)
	return sd * sd
}
