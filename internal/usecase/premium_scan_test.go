package usecase

import (
	"context"
	"testing"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/services/scan"
	"VolPulse/pkg/cache"
)

func newScanFixture(md *fakeMarketData) (*PremiumScanUseCase, *fakeStore) {
	store := &fakeStore{bars: map[string][]models.Bar{
		"AAPL": syntheticBars("AAPL", 320),
		"MSFT": syntheticBars("MSFT", 320),
	}}
	uc := NewPremiumScanUseCase(store, md, cache.NewMemoryCache(), nil, nopMetrics{}, testLogger(), ScanConfig{})
	return uc, store
}

func TestScanRichIVFlagsSell(t *testing.T) {
	uc, _ := newScanFixture(&fakeMarketData{iv: 3.0, ok: true})

	report, err := uc.Scan(context.Background(), []string{"AAPL", "MSFT"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
	for _, row := range report.Rows {
		if row.IVSource != "chain" {
			t.Errorf("%s: expected chain source, got %s", row.Symbol, row.IVSource)
		}
		if row.Premium <= 0 {
			t.Errorf("%s: expected positive premium, got %v", row.Symbol, row.Premium)
		}
		if row.Signal != scan.SignalSell {
			t.Errorf("%s: expected SELL for rich IV, got %s", row.Symbol, row.Signal)
		}
	}
}

func TestScanHVProxyFallback(t *testing.T) {
	uc, _ := newScanFixture(&fakeMarketData{ok: false})

	report, err := uc.Scan(context.Background(), []string{"AAPL"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Rows))
	}
	if report.Rows[0].IVSource != "hv_proxy" {
		t.Errorf("expected hv_proxy source, got %s", report.Rows[0].IVSource)
	}
}

func TestScanBadSymbolDoesNotAbort(t *testing.T) {
	uc, _ := newScanFixture(&fakeMarketData{iv: 0.5, ok: true})

	report, err := uc.Scan(context.Background(), []string{"AAPL", "NOPE"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Rows))
	}
	if _, ok := report.Errors["NOPE"]; !ok {
		t.Fatalf("expected error entry for NOPE, got %v", report.Errors)
	}
}

func TestScanRowsSortedByPremium(t *testing.T) {
	uc, _ := newScanFixture(&fakeMarketData{iv: 1.0, ok: true})

	report, err := uc.Scan(context.Background(), []string{"AAPL", "MSFT"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(report.Rows); i++ {
		if report.Rows[i-1].Premium < report.Rows[i].Premium {
			t.Fatalf("rows not sorted by premium desc: %v", report.Rows)
		}
	}
}

func TestScanServedFromCache(t *testing.T) {
	uc, store := newScanFixture(&fakeMarketData{iv: 1.0, ok: true})

	first, err := uc.Scan(context.Background(), []string{"AAPL"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// break the store; a cached report must still come back
	store.err = context.DeadlineExceeded
	second, err := uc.Scan(context.Background(), []string{"AAPL"}, 60)
	if err != nil {
		t.Fatalf("expected cache hit, got error: %v", err)
	}
	if len(second.Rows) != len(first.Rows) {
		t.Fatalf("cached report differs: %d vs %d rows", len(second.Rows), len(first.Rows))
	}
}

func TestScanNoSymbols(t *testing.T) {
	uc, _ := newScanFixture(&fakeMarketData{})
	if _, err := uc.Scan(context.Background(), nil, 60); err == nil {
		t.Fatalf("expected error for empty symbol list")
	}
}

func TestScanCacheKeyOrderIndependent(t *testing.T) {
	a := ScanCacheKey([]string{"MSFT", "AAPL"}, 252)
	b := ScanCacheKey([]string{"AAPL", "MSFT"}, 252)
	if a != b {
		t.Fatalf("cache key depends on symbol order: %s vs %s", a, b)
	}
}
