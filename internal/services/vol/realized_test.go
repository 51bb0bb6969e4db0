package vol

import (
	"errors"
	"math"
	"testing"
)

func TestRealizedVolFlatWindowIsZero(t *testing.T) {
	returns := make([]float64, 30)
	for i := range returns {
		returns[i] = 0.004
	}
	got, err := RealizedVol(returns, 20, true)
	if err != nil {
		t.Fatalf("RealizedVol: %v", err)
	}
	if got != 0 {
		t.Errorf("flat window vol = %v, want exactly 0", got)
	}
}

func TestRealizedVolAnnualizationRatio(t *testing.T) {
	returns := normalReturns(120, 0.25, 7)
	ann, err := RealizedVol(returns, 20, true)
	if err != nil {
		t.Fatalf("RealizedVol annualized: %v", err)
	}
	raw, err := RealizedVol(returns, 20, false)
	if err != nil {
		t.Fatalf("RealizedVol raw: %v", err)
	}
	if !almostEqual(ann, raw*math.Sqrt(252), 1e-10) {
		t.Errorf("annualized %v != raw*sqrt(252) %v", ann, raw*math.Sqrt(252))
	}
}

func TestRealizedVolInsufficientData(t *testing.T) {
	_, err := RealizedVol([]float64{0.01, -0.02, 0.005}, 20, true)
	var ins *InsufficientDataError
	if !errors.As(err, &ins) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ins.Required != 20 || ins.Actual != 3 {
		t.Errorf("required/actual = %d/%d, want 20/3", ins.Required, ins.Actual)
	}
}

func TestRealizedVolOrdersBySigma(t *testing.T) {
	quiet := normalReturns(300, 0.10, 11)
	loud := normalReturns(300, 0.30, 11)
	lo, err := RealizedVol(quiet, 100, true)
	if err != nil {
		t.Fatalf("RealizedVol quiet: %v", err)
	}
	hi, err := RealizedVol(loud, 100, true)
	if err != nil {
		t.Fatalf("RealizedVol loud: %v", err)
	}
	if lo >= hi {
		t.Errorf("vol(sigma=0.10) = %v not below vol(sigma=0.30) = %v", lo, hi)
	}
}

func TestRealizedVolRecoversKnownSigma(t *testing.T) {
	returns := normalReturns(300, 0.20, 42)
	got, err := RealizedVol(returns, 252, true)
	if err != nil {
		t.Fatalf("RealizedVol: %v", err)
	}
	if got < 0.10 || got > 0.35 {
		t.Errorf("vol = %v, want within [0.10, 0.35] for sigma=0.20", got)
	}
}

func TestParkinsonZeroRange(t *testing.T) {
	high := []float64{50, 50, 50, 50, 50}
	low := []float64{50, 50, 50, 50, 50}
	got, err := ParkinsonVol(high, low, 5)
	if err != nil {
		t.Fatalf("ParkinsonVol: %v", err)
	}
	if got != 0 {
		t.Errorf("zero-range vol = %v, want exactly 0", got)
	}
}

func TestParkinsonKnownValue(t *testing.T) {
	high := []float64{102, 104}
	low := []float64{100, 101}
	got, err := ParkinsonVol(high, low, 2)
	if err != nil {
		t.Fatalf("ParkinsonVol: %v", err)
	}
	r1 := math.Log(102.0 / 100.0)
	r2 := math.Log(104.0 / 101.0)
	want := math.Sqrt((r1*r1 + r2*r2) / 2 / (4 * math.Ln2) * 252)
	if !almostEqual(got, want, 1e-12) {
		t.Errorf("vol = %v, want %v", got, want)
	}
}

func TestParkinsonInvalidInput(t *testing.T) {
	if _, err := ParkinsonVol([]float64{10, 11}, []float64{9}, 2); !IsInvalidInput(err) {
		t.Errorf("mismatched lengths: expected invalid input, got %v", err)
	}
	if _, err := ParkinsonVol([]float64{10, 9}, []float64{9, 10}, 2); !IsInvalidInput(err) {
		t.Errorf("high below low: expected invalid input, got %v", err)
	}
	if _, err := ParkinsonVol([]float64{10, 11}, []float64{9, -1}, 2); !IsInvalidInput(err) {
		t.Errorf("non-positive price: expected invalid input, got %v", err)
	}
}

func TestParkinsonInsufficientData(t *testing.T) {
	_, err := ParkinsonVol([]float64{10, 11}, []float64{9, 10}, 5)
	var ins *InsufficientDataError
	if !errors.As(err, &ins) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ins.Required != 5 || ins.Actual != 2 {
		t.Errorf("required/actual = %d/%d, want 5/2", ins.Required, ins.Actual)
	}
}
