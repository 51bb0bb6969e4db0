package vol

import (
	"errors"
	"math"
	"testing"
)

func TestLogReturnsLength(t *testing.T) {
	prices := []float64{100, 101, 99, 103, 103.5}
	returns, err := LogReturns(prices)
	if err != nil {
		t.Fatalf("LogReturns: %v", err)
	}
	if len(returns) != len(prices)-1 {
		t.Fatalf("expected %d returns, got %d", len(prices)-1, len(returns))
	}
	want := math.Log(101.0 / 100.0)
	if !almostEqual(returns[0], want, 1e-12) {
		t.Errorf("returns[0] = %v, want %v", returns[0], want)
	}
}

func TestLogReturnsDropsNaN(t *testing.T) {
	returns, err := LogReturns([]float64{100, math.NaN(), 110})
	if err != nil {
		t.Fatalf("LogReturns: %v", err)
	}
	if len(returns) != 1 {
		t.Fatalf("expected 1 return after dropping NaN, got %d", len(returns))
	}
	if !almostEqual(returns[0], math.Log(1.1), 1e-12) {
		t.Errorf("returns[0] = %v, want %v", returns[0], math.Log(1.1))
	}
}

func TestLogReturnsRejectsNonPositive(t *testing.T) {
	for _, bad := range [][]float64{
		{100, -5, 110},
		{100, 0, 110},
		{100, math.Inf(1), 110},
	} {
		if _, err := LogReturns(bad); !IsInvalidInput(err) {
			t.Errorf("LogReturns(%v): expected invalid input, got %v", bad, err)
		}
	}
}

func TestLogReturnsTooShort(t *testing.T) {
	_, err := LogReturns([]float64{100})
	var ins *InsufficientDataError
	if !errors.As(err, &ins) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ins.Required != 2 || ins.Actual != 1 {
		t.Errorf("required/actual = %d/%d, want 2/1", ins.Required, ins.Actual)
	}
}
