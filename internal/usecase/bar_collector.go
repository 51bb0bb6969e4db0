package usecase

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
	drepo "VolPulse/internal/domain/repository"
	domsvc "VolPulse/internal/domain/service"
	"VolPulse/pkg/logger"
)

// BarCollector polls the market-data source for daily bars on an interval
// and hands them to the processor.
type BarCollector struct {
	md       domsvc.MarketData
	proc     *BarProcessor
	metrics  drepo.Metrics
	log      *logger.Logger
	symbols  []string
	interval time.Duration
	lookback int
	stopCh   chan struct{}
}

// NewBarCollector creates a new BarCollector instance.
func NewBarCollector(
	md domsvc.MarketData,
	proc *BarProcessor,
	metrics drepo.Metrics,
	log *logger.Logger,
	symbols []string,
	interval time.Duration,
	lookback int,
) *BarCollector {
	if interval <= 0 {
		interval = time.Hour
	}
	return &BarCollector{
		md:       md,
		proc:     proc,
		metrics:  metrics,
		log:      log,
		symbols:  symbols,
		interval: interval,
		lookback: drepo.NormalizeLookback(lookback),
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling. It polls once immediately so the store is warm.
func (c *BarCollector) Start(ctx context.Context) error {
	c.pollAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		case <-ticker.C:
			c.pollAll(ctx)
		}
	}
}

func (c *BarCollector) pollAll(ctx context.Context) {
	for _, sym := range c.symbols {
		if err := c.poll(ctx, sym); err != nil {
			c.metrics.RecordError("collector_poll")
			c.log.Warn("bar poll failed",
				logger.String("symbol", sym),
				logger.Error(err))
		}
	}
}

func (c *BarCollector) poll(ctx context.Context, symbol string) error {
	to := time.Now()
	// calendar days needed to cover the trading-day lookback, with slack
	from := to.AddDate(0, 0, -(c.lookback*7/5 + 10))

	bars, err := c.md.DailyBars(ctx, symbol, from, to)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return nil
	}
	refs := make([]*models.Bar, len(bars))
	for i := range bars {
		refs[i] = &bars[i]
	}
	if err := c.proc.ProcessBatch(ctx, refs); err != nil {
		return err
	}
	c.log.Debug("bars collected",
		logger.String("symbol", symbol),
		logger.Int("count", len(bars)))
	return nil
}

// Shutdown stops polling.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	close(c.stopCh)
	return nil
}

// Processor returns the underlying BarProcessor for lifecycle management.
func (c *BarCollector) Processor() *BarProcessor { return c.proc }
