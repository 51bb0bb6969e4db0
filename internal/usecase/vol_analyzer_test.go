package usecase

import (
	"context"
	"testing"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/services/scan"
	"VolPulse/internal/services/vol"
)

func newAnalyzerFixture(md *fakeMarketData) *VolAnalyzer {
	store := &fakeStore{bars: map[string][]models.Bar{
		"AAPL": syntheticBars("AAPL", 320),
		"MSFT": syntheticBars("MSFT", 320),
	}}
	forecaster := vol.NewForecaster(vol.NewGonumFitter())
	return NewVolAnalyzer(store, md, forecaster, nil, nopMetrics{}, 20)
}

func TestAnalyzerRealized(t *testing.T) {
	a := newAnalyzerFixture(&fakeMarketData{})

	res, err := a.Realized(context.Background(), "AAPL", 20, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Vol <= 0 {
		t.Errorf("expected positive vol, got %v", res.Vol)
	}
	if res.Estimator != "close" || !res.Annualized {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestAnalyzerParkinson(t *testing.T) {
	a := newAnalyzerFixture(&fakeMarketData{})

	res, err := a.Parkinson(context.Background(), "AAPL", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Vol <= 0 {
		t.Errorf("expected positive vol, got %v", res.Vol)
	}
	if res.Estimator != "parkinson" {
		t.Errorf("unexpected estimator %s", res.Estimator)
	}
}

func TestAnalyzerForecastInsufficientData(t *testing.T) {
	store := &fakeStore{bars: map[string][]models.Bar{
		"AAPL": syntheticBars("AAPL", 50),
	}}
	a := NewVolAnalyzer(store, &fakeMarketData{}, vol.NewForecaster(vol.NewGonumFitter()), nil, nopMetrics{}, 20)

	_, err := a.Forecast(context.Background(), "AAPL", 5, 500)
	if !vol.IsInsufficientData(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestAnalyzerIVSnapshotProxy(t *testing.T) {
	a := newAnalyzerFixture(&fakeMarketData{ok: false})

	snap, err := a.IVSnapshot(context.Background(), "AAPL", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.IVSource != "hv_proxy" {
		t.Errorf("expected hv_proxy, got %s", snap.IVSource)
	}
	if snap.ATMIV != snap.HVCurrent {
		t.Errorf("proxy IV should equal current HV: %v vs %v", snap.ATMIV, snap.HVCurrent)
	}
	if snap.Signal == "" {
		t.Errorf("expected a signal")
	}
}

func TestAnalyzerCorrelationIdenticalSeries(t *testing.T) {
	a := newAnalyzerFixture(&fakeMarketData{})

	rep, err := a.Correlation(context.Background(), []string{"AAPL", "MSFT"}, 30, 0.85)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// identical synthetic series are perfectly correlated
	if rep.Matrix[0][1] < 0.999 {
		t.Errorf("expected near-perfect correlation, got %v", rep.Matrix[0][1])
	}
	if rep.Regime != scan.RegimeHigh {
		t.Errorf("expected HIGH regime, got %s", rep.Regime)
	}
	if len(rep.Pairs) != 1 || rep.Pairs[0].A != "AAPL" || rep.Pairs[0].B != "MSFT" {
		t.Fatalf("unexpected pairs %+v", rep.Pairs)
	}
	if rep.Pairs[0].Regime != scan.RegimeHigh {
		t.Errorf("pair regime = %s, want HIGH", rep.Pairs[0].Regime)
	}
}

func TestAnalyzerCorrelationNeedsTwoSymbols(t *testing.T) {
	a := newAnalyzerFixture(&fakeMarketData{})
	if _, err := a.Correlation(context.Background(), []string{"AAPL"}, 30, 0.85); !vol.IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
