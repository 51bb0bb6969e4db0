package vol

import (
	"errors"
	"math"
	"strings"
	"testing"

	"VolPulse/internal/domain/models"
)

type stubFitter struct {
	fit models.GarchFit
	err error
}

func (s stubFitter) FitGARCH(_ []float64) (models.GarchFit, error) { return s.fit, s.err }

func TestForecastRequiresMinimumSample(t *testing.T) {
	f := NewForecaster(stubFitter{})
	_, err := f.Forecast(make([]float64, 99), 5)
	var ins *InsufficientDataError
	if !errors.As(err, &ins) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ins.Required != 100 {
		t.Errorf("required = %d, want 100", ins.Required)
	}
	if !strings.Contains(err.Error(), "100") {
		t.Errorf("error %q does not mention the 100-observation minimum", err.Error())
	}
}

func TestForecastHalfLifeFormula(t *testing.T) {
	f := NewForecaster(stubFitter{fit: models.GarchFit{
		Omega:        0.05,
		Alpha:        0.1,
		Beta:         0.8,
		VariancePath: []float64{1.0},
	}})
	res, err := f.Forecast(normalReturns(200, 0.2, 3), 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !almostEqual(res.Persistence, 0.9, 1e-12) {
		t.Fatalf("persistence = %v, want 0.9", res.Persistence)
	}
	want := math.Ln2 / -math.Log(0.9)
	if res.HalfLife != want {
		t.Errorf("half-life = %v, want exactly %v", res.HalfLife, want)
	}
	// long-run variance 0.05/(1-0.9) = 0.5; forecast mean-reverts from 1.0
	wantForecastVar := 0.5 + math.Pow(0.9, 5)*(1.0-0.5)
	wantVol := math.Sqrt(wantForecastVar) / 100 * math.Sqrt(252)
	if !almostEqual(res.ForecastVol, wantVol, 1e-12) {
		t.Errorf("forecast vol = %v, want %v", res.ForecastVol, wantVol)
	}
}

func TestForecastNonStationarySentinels(t *testing.T) {
	f := NewForecaster(stubFitter{fit: models.GarchFit{
		Omega:        0.05,
		Alpha:        0.3,
		Beta:         0.8,
		VariancePath: []float64{2.0},
	}})
	res, err := f.Forecast(normalReturns(200, 0.2, 3), 10)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !math.IsInf(res.HalfLife, 1) {
		t.Errorf("half-life = %v, want +Inf for persistence >= 1", res.HalfLife)
	}
	if res.ForecastVol != res.CurrentVol {
		t.Errorf("non-stationary forecast vol %v should equal current vol %v", res.ForecastVol, res.CurrentVol)
	}
}

func TestForecastPropagatesFitFailure(t *testing.T) {
	f := NewForecaster(stubFitter{err: &FitError{Reason: "did not converge"}})
	_, err := f.Forecast(normalReturns(200, 0.2, 3), 5)
	if !IsFitFailure(err) {
		t.Fatalf("expected fit failure, got %v", err)
	}
}

func TestForecastRejectsBadInput(t *testing.T) {
	f := NewForecaster(stubFitter{fit: models.GarchFit{VariancePath: []float64{1}}})
	if _, err := f.Forecast(normalReturns(200, 0.2, 3), 0); !IsInvalidInput(err) {
		t.Errorf("horizon 0: expected invalid input, got %v", err)
	}
	bad := normalReturns(200, 0.2, 3)
	bad[17] = math.NaN()
	if _, err := f.Forecast(bad, 5); !IsInvalidInput(err) {
		t.Errorf("NaN return: expected invalid input, got %v", err)
	}
}

func TestForecastEndToEnd(t *testing.T) {
	scaled := simulateGarch(500, 0.05, 0.1, 0.85, 21)
	returns := make([]float64, len(scaled))
	for i, r := range scaled {
		returns[i] = r / 100
	}
	f := NewForecaster(NewGonumFitter())
	res, err := f.Forecast(returns, 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.CurrentVol <= 0 {
		t.Errorf("current vol = %v, want > 0", res.CurrentVol)
	}
	if res.ForecastVol <= 0 {
		t.Errorf("forecast vol = %v, want > 0", res.ForecastVol)
	}
	if res.Persistence <= 0 || res.Persistence >= 1.5 {
		t.Errorf("persistence = %v, want within (0, 1.5)", res.Persistence)
	}
	if res.HalfLife <= 0 {
		t.Errorf("half-life = %v, want > 0", res.HalfLife)
	}
}
