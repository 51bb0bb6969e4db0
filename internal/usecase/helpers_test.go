package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/logger"
)

func testLogger() *logger.Logger {
	l, _ := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	return l
}

// fakeStore serves canned bar series keyed by symbol.
type fakeStore struct {
	bars map[string][]models.Bar
	err  error
}

func (f *fakeStore) GetBars(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Bar
	for _, b := range f.bars[symbol] {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLatestNBars(_ context.Context, symbol string, n int) ([]models.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

// fakeMarketData returns a fixed implied vol.
type fakeMarketData struct {
	iv  float64
	ok  bool
	err error
}

func (f *fakeMarketData) DailyBars(_ context.Context, _ string, _, _ time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (f *fakeMarketData) ATMImpliedVol(_ context.Context, _ string) (float64, bool, error) {
	return f.iv, f.ok, f.err
}

func (f *fakeMarketData) TermStructure(_ context.Context, _ string) ([]models.TermPoint, error) {
	return nil, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordBarStored(_, _ string)         {}
func (nopMetrics) RecordError(_ string)                {}
func (nopMetrics) RecordLastPrice(_ string, _ float64) {}
func (nopMetrics) RecordVol(_, _ string, _ float64)    {}
func (nopMetrics) RecordScan(_ string)                 {}
func (nopMetrics) RecordLatency(_ string, _ float64)   {}

// recordSink captures stored bars.
type recordSink struct {
	mu   sync.Mutex
	bars []*models.Bar
	err  error
}

func (s *recordSink) Init(context.Context) error   { return nil }
func (s *recordSink) Health(context.Context) error { return nil }
func (s *recordSink) Close() error                 { return nil }

func (s *recordSink) Store(_ context.Context, b *models.Bar) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.bars = append(s.bars, b)
	s.mu.Unlock()
	return nil
}

func (s *recordSink) StoreBatch(_ context.Context, bars []*models.Bar) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.bars = append(s.bars, bars...)
	s.mu.Unlock()
	return nil
}

// syntheticBars builds a daily series with gently oscillating closes.
func syntheticBars(symbol string, n int) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 * (1 + 0.01*math.Sin(float64(i)*0.7))
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Symbol: symbol,
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}
