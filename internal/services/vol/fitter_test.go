package vol

import (
	"testing"
)

func TestFitGARCHDeterministic(t *testing.T) {
	returns := simulateGarch(400, 0.05, 0.1, 0.85, 9)
	fitter := NewGonumFitter()
	a, err := fitter.FitGARCH(returns)
	if err != nil {
		t.Fatalf("first fit: %v", err)
	}
	b, err := fitter.FitGARCH(returns)
	if err != nil {
		t.Fatalf("second fit: %v", err)
	}
	if a.Omega != b.Omega || a.Alpha != b.Alpha || a.Beta != b.Beta {
		t.Errorf("repeated fits differ: (%v,%v,%v) vs (%v,%v,%v)",
			a.Omega, a.Alpha, a.Beta, b.Omega, b.Alpha, b.Beta)
	}
}

func TestFitGARCHRespectsConstraints(t *testing.T) {
	returns := simulateGarch(600, 0.05, 0.1, 0.85, 13)
	fit, err := NewGonumFitter().FitGARCH(returns)
	if err != nil {
		t.Fatalf("FitGARCH: %v", err)
	}
	if fit.Omega <= 0 {
		t.Errorf("omega = %v, want > 0", fit.Omega)
	}
	if fit.Alpha < 0 || fit.Beta < 0 {
		t.Errorf("alpha/beta = %v/%v, want non-negative", fit.Alpha, fit.Beta)
	}
	persistence := fit.Alpha + fit.Beta
	if persistence >= 1 {
		t.Errorf("persistence = %v, want below 1", persistence)
	}
	if len(fit.VariancePath) != len(returns) {
		t.Errorf("variance path length %d, want %d", len(fit.VariancePath), len(returns))
	}
	for i, v := range fit.VariancePath {
		if v <= 0 {
			t.Fatalf("variance path[%d] = %v, want > 0", i, v)
		}
	}
}

func TestFitGARCHRecoversPersistence(t *testing.T) {
	returns := simulateGarch(1000, 0.05, 0.1, 0.85, 17)
	fit, err := NewGonumFitter().FitGARCH(returns)
	if err != nil {
		t.Fatalf("FitGARCH: %v", err)
	}
	persistence := fit.Alpha + fit.Beta
	if persistence < 0.5 || persistence >= 1 {
		t.Errorf("fitted persistence = %v, want within [0.5, 1) for a 0.95-persistence sample", persistence)
	}
}

func TestFitGARCHZeroVarianceSeries(t *testing.T) {
	flat := make([]float64, 300)
	_, err := NewGonumFitter().FitGARCH(flat)
	if !IsFitFailure(err) {
		t.Fatalf("expected fit failure on a zero-variance series, got %v", err)
	}
}
