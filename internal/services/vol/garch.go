package vol

import (
	"fmt"
	"math"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/service"
)

// MinObservations is the sample size below which a GARCH fit is rejected.
const MinObservations = 100

// returnScale conditions the optimizer: raw daily log returns are around
// 1e-2, so squared returns underflow the likelihood surface. Returns are
// multiplied by 100 before the fit and variances divided by 10000 after.
const returnScale = 100

// Forecaster fits a GARCH(1,1) conditional-variance model to a return series
// and projects volatility h steps ahead.
type Forecaster struct {
	fitter service.ModelFitter
}

func NewForecaster(fitter service.ModelFitter) *Forecaster {
	return &Forecaster{fitter: fitter}
}

// Forecast fits the model on the full return series and derives persistence,
// long-run variance, the h-step forecast variance
//
//	forecast = longRun + persistence^h * (current - longRun)
//
// and the shock half-life ln(2)/-ln(persistence). When persistence >= 1 the
// process is non-stationary: the long-run level degenerates to the current
// variance and the half-life is +Inf. Both are valid results, not errors.
func (f *Forecaster) Forecast(returns []float64, horizon int) (models.ForecastResult, error) {
	if horizon < 1 {
		return models.ForecastResult{}, &InvalidInputError{Reason: fmt.Sprintf("horizon %d is below the minimum of 1", horizon)}
	}
	if len(returns) < MinObservations {
		return models.ForecastResult{}, &InsufficientDataError{Required: MinObservations, Actual: len(returns)}
	}
	scaled := make([]float64, len(returns))
	for i, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return models.ForecastResult{}, &InvalidInputError{Reason: fmt.Sprintf("non-finite return at index %d", i)}
		}
		scaled[i] = r * returnScale
	}

	fit, err := f.fitter.FitGARCH(scaled)
	if err != nil {
		return models.ForecastResult{}, err
	}
	if len(fit.VariancePath) == 0 {
		return models.ForecastResult{}, &FitError{Reason: "empty conditional-variance path"}
	}

	persistence := fit.Alpha + fit.Beta
	currentVar := fit.VariancePath[len(fit.VariancePath)-1]
	if !isFinite(currentVar) || currentVar <= 0 || !isFinite(persistence) || persistence < 0 {
		return models.ForecastResult{}, &FitError{Reason: "fitted model produced an invalid variance"}
	}

	longRunVar := currentVar
	if persistence < 1 {
		longRunVar = fit.Omega / (1 - persistence)
	}
	forecastVar := longRunVar + math.Pow(persistence, float64(horizon))*(currentVar-longRunVar)
	if forecastVar < 0 || !isFinite(forecastVar) {
		return models.ForecastResult{}, &FitError{Reason: "forecast variance is not a non-negative finite number"}
	}

	halfLife := math.Inf(1)
	if persistence > 0 && persistence < 1 {
		halfLife = math.Ln2 / -math.Log(persistence)
	}

	ann := math.Sqrt(TradingDays)
	return models.ForecastResult{
		Horizon:     horizon,
		CurrentVol:  math.Sqrt(currentVar) / returnScale * ann,
		ForecastVol: math.Sqrt(forecastVar) / returnScale * ann,
		LongRunVol:  math.Sqrt(longRunVar) / returnScale * ann,
		Persistence: persistence,
		HalfLife:    halfLife,
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
