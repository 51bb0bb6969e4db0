package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"VolPulse/internal/domain/models"
	domrepo "VolPulse/internal/domain/repository"
	domsvc "VolPulse/internal/domain/service"
	"VolPulse/internal/services/scan"
	"VolPulse/pkg/cache"
	"VolPulse/pkg/logger"
)

// ScanConfig bundles the scanning windows and cache TTL.
type ScanConfig struct {
	HVWindow   int
	FastWindow int
	SlowWindow int
	CacheTTL   time.Duration
}

// PremiumScanUseCase scans a symbol universe for rich implied vol. Symbols
// that fail are skipped and reported; one bad ticker never aborts a scan.
type PremiumScanUseCase struct {
	store   domrepo.BarStore
	md      domsvc.MarketData
	cache   cache.Service
	alerts  domrepo.AlertPublisher
	metrics domrepo.Metrics
	log     *logger.Logger
	cfg     ScanConfig
}

func NewPremiumScanUseCase(
	store domrepo.BarStore,
	md domsvc.MarketData,
	c cache.Service,
	alerts domrepo.AlertPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	cfg ScanConfig,
) *PremiumScanUseCase {
	if cfg.HVWindow <= 0 {
		cfg.HVWindow = scan.DefaultHVWindow
	}
	if cfg.FastWindow <= 0 {
		cfg.FastWindow = scan.DefaultFastWindow
	}
	if cfg.SlowWindow <= 0 {
		cfg.SlowWindow = scan.DefaultSlowWindow
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &PremiumScanUseCase{
		store:   store,
		md:      md,
		cache:   c,
		alerts:  alerts,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

// ScanCacheKey is deterministic for a symbol set and lookback.
func ScanCacheKey(symbols []string, lookback int) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)
	return fmt.Sprintf("scan:%d:%s", lookback, strings.Join(sorted, ","))
}

// Scan runs the premium scan, serving from cache when fresh.
func (uc *PremiumScanUseCase) Scan(ctx context.Context, symbols []string, lookback int) (*models.ScanReport, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to scan")
	}
	lookback = domrepo.NormalizeLookback(lookback)

	key := ScanCacheKey(symbols, lookback)
	if uc.cache != nil {
		var cached models.ScanReport
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	report := &models.ScanReport{
		Timestamp: time.Now().UTC(),
		Lookback:  lookback,
		Errors:    map[string]string{},
	}

	type item struct {
		symbol string
		row    models.PremiumRow
		err    error
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			row, err := uc.scanSymbol(ctx, sym, lookback)
			ch <- item{sym, row, err}
		}(sym)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			report.Errors[it.symbol] = it.err.Error()
			uc.log.Warn("scan symbol failed",
				logger.String("symbol", it.symbol),
				logger.Error(it.err))
			continue
		}
		report.Rows = append(report.Rows, it.row)
	}
	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Premium > report.Rows[j].Premium
	})

	outcome := "ok"
	if len(report.Errors) > 0 {
		outcome = "partial"
	}
	if len(report.Rows) == 0 {
		outcome = "empty"
	}
	uc.metrics.RecordScan(outcome)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, report, uc.cfg.CacheTTL); err != nil {
			uc.log.Warn("scan cache write failed", logger.Error(err))
		}
	}
	uc.publishAlerts(ctx, report)
	return report, nil
}

func (uc *PremiumScanUseCase) scanSymbol(ctx context.Context, symbol string, lookback int) (models.PremiumRow, error) {
	bars, err := uc.store.GetLatestNBars(ctx, symbol, lookback+uc.cfg.HVWindow+1)
	if err != nil {
		return models.PremiumRow{}, fmt.Errorf("load bars: %w", err)
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	hv := scan.HVSeries(closes, uc.cfg.HVWindow)
	if len(hv) == 0 {
		return models.PremiumRow{}, fmt.Errorf("not enough bars: %d", len(bars))
	}

	iv, ok, err := uc.md.ATMImpliedVol(ctx, symbol)
	if err != nil {
		return models.PremiumRow{}, fmt.Errorf("atm iv: %w", err)
	}
	source := "chain"
	if !ok {
		iv = hv[len(hv)-1]
		source = "hv_proxy"
	}

	stats, err := scan.Premium(closes, iv, uc.cfg.FastWindow, uc.cfg.SlowWindow, uc.cfg.HVWindow)
	if err != nil {
		return models.PremiumRow{}, err
	}
	ivPct := scan.PercentileRank(hv, iv)

	var spot float64
	if len(closes) > 0 {
		spot = closes[len(closes)-1]
	}
	return models.PremiumRow{
		Symbol:        symbol,
		Spot:          spot,
		IV:            iv,
		IVSource:      source,
		RV:            stats.RV,
		Premium:       stats.Premium,
		PremiumPctile: stats.PremiumPctile,
		IVPercentile:  ivPct,
		Signal:        scan.ScanSignal(ivPct, stats.Premium),
	}, nil
}

func (uc *PremiumScanUseCase) publishAlerts(ctx context.Context, report *models.ScanReport) {
	if uc.alerts == nil {
		return
	}
	for _, row := range report.Rows {
		if row.Signal != scan.SignalSell {
			continue
		}
		if err := uc.alerts.PublishAlert(ctx, row); err != nil {
			uc.metrics.RecordError("alert_publish")
			uc.log.Warn("alert publish failed",
				logger.String("symbol", row.Symbol),
				logger.Error(err))
		}
	}
}
