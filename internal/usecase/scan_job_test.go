package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/cache"
)

func TestScanJobHandleCachesResult(t *testing.T) {
	c := cache.NewMemoryCache()
	store := &fakeStore{bars: map[string][]models.Bar{
		"AAPL": syntheticBars("AAPL", 320),
	}}
	uc := NewPremiumScanUseCase(store, &fakeMarketData{iv: 0.4, ok: true}, nil, nil, nopMetrics{}, testLogger(), ScanConfig{})
	job := NewScanJob(uc, c, testLogger(), time.Minute)

	payload, _ := json.Marshal(ScanJobPayload{ID: "j1", Symbols: []string{"AAPL"}, Lookback: 60})
	if err := job.Handle(context.Background(), json.RawMessage(payload)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res models.ScanJobResult
	if err := c.Get(context.Background(), ScanJobKey("j1"), &res); err != nil {
		t.Fatalf("result not cached: %v", err)
	}
	if res.Status != models.ScanJobDone {
		t.Errorf("expected done status, got %s", res.Status)
	}
	if res.Report == nil || len(res.Report.Rows) != 1 {
		t.Errorf("expected report with 1 row, got %+v", res.Report)
	}
}

func TestScanJobHandleFailure(t *testing.T) {
	c := cache.NewMemoryCache()
	store := &fakeStore{bars: map[string][]models.Bar{}}
	uc := NewPremiumScanUseCase(store, &fakeMarketData{}, nil, nil, nopMetrics{}, testLogger(), ScanConfig{})
	job := NewScanJob(uc, c, testLogger(), time.Minute)

	payload, _ := json.Marshal(ScanJobPayload{ID: "j2"})
	if err := job.Handle(context.Background(), json.RawMessage(payload)); err == nil {
		t.Fatalf("expected error for empty symbol list")
	}

	var res models.ScanJobResult
	if err := c.Get(context.Background(), ScanJobKey("j2"), &res); err != nil {
		t.Fatalf("result not cached: %v", err)
	}
	if res.Status != models.ScanJobFailed {
		t.Errorf("expected failed status, got %s", res.Status)
	}
	if res.Error == "" {
		t.Errorf("expected error message in result")
	}
}

func TestScanJobType(t *testing.T) {
	job := NewScanJob(nil, nil, testLogger(), 0)
	if job.Type() != ScanJobType {
		t.Fatalf("unexpected type %s", job.Type())
	}
}
