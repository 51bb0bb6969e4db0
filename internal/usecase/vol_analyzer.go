package usecase

import (
	"context"
	"fmt"
	"time"

	"VolPulse/internal/domain/models"
	domrepo "VolPulse/internal/domain/repository"
	domsvc "VolPulse/internal/domain/service"
	"VolPulse/internal/service/marketdata"
	"VolPulse/internal/services/scan"
	"VolPulse/internal/services/vol"
)

// VolAnalyzer runs the volatility engine over stored bars.
type VolAnalyzer struct {
	store      domrepo.BarStore
	md         domsvc.MarketData
	forecaster *vol.Forecaster
	book       *marketdata.PriceBook
	metrics    domrepo.Metrics
	hvWindow   int
}

func NewVolAnalyzer(
	store domrepo.BarStore,
	md domsvc.MarketData,
	forecaster *vol.Forecaster,
	book *marketdata.PriceBook,
	metrics domrepo.Metrics,
	hvWindow int,
) *VolAnalyzer {
	if hvWindow <= 0 {
		hvWindow = scan.DefaultHVWindow
	}
	return &VolAnalyzer{
		store:      store,
		md:         md,
		forecaster: forecaster,
		book:       book,
		metrics:    metrics,
		hvWindow:   hvWindow,
	}
}

func (a *VolAnalyzer) closes(ctx context.Context, symbol string, n int) ([]float64, error) {
	bars, err := a.store.GetLatestNBars(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("load bars %s: %w", symbol, err)
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out, nil
}

// Forecast fits a GARCH(1,1) model on the latest n closes and projects
// volatility horizon days ahead.
func (a *VolAnalyzer) Forecast(ctx context.Context, symbol string, horizon, n int) (models.ForecastResult, error) {
	closes, err := a.closes(ctx, symbol, n)
	if err != nil {
		return models.ForecastResult{}, err
	}
	returns, err := vol.LogReturns(closes)
	if err != nil {
		return models.ForecastResult{}, err
	}
	start := time.Now()
	res, err := a.forecaster.Forecast(returns, horizon)
	a.metrics.RecordLatency("garch_fit", time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordError("garch_fit")
		return models.ForecastResult{}, err
	}
	res.Symbol = symbol
	a.metrics.RecordVol(symbol, "garch_forecast", res.ForecastVol)
	return res, nil
}

// Realized computes the close-to-close estimate over the trailing window.
func (a *VolAnalyzer) Realized(ctx context.Context, symbol string, window int, annualize bool) (models.RealizedResult, error) {
	closes, err := a.closes(ctx, symbol, window+1)
	if err != nil {
		return models.RealizedResult{}, err
	}
	returns, err := vol.LogReturns(closes)
	if err != nil {
		return models.RealizedResult{}, err
	}
	v, err := vol.RealizedVol(returns, window, annualize)
	if err != nil {
		return models.RealizedResult{}, err
	}
	a.metrics.RecordVol(symbol, "realized", v)
	return models.RealizedResult{
		Symbol:     symbol,
		Estimator:  "close",
		Window:     window,
		Vol:        v,
		Annualized: annualize,
	}, nil
}

// Parkinson computes the high-low range estimate over the trailing window.
func (a *VolAnalyzer) Parkinson(ctx context.Context, symbol string, window int) (models.RealizedResult, error) {
	bars, err := a.store.GetLatestNBars(ctx, symbol, window)
	if err != nil {
		return models.RealizedResult{}, fmt.Errorf("load bars %s: %w", symbol, err)
	}
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	for i, b := range bars {
		high[i] = b.High
		low[i] = b.Low
	}
	v, err := vol.ParkinsonVol(high, low, window)
	if err != nil {
		return models.RealizedResult{}, err
	}
	a.metrics.RecordVol(symbol, "parkinson", v)
	return models.RealizedResult{
		Symbol:     symbol,
		Estimator:  "parkinson",
		Window:     window,
		Vol:        v,
		Annualized: true,
	}, nil
}

// IVSnapshot places the current implied vol inside its own history. When the
// chain has no usable quote the historical vol stands in as a proxy.
func (a *VolAnalyzer) IVSnapshot(ctx context.Context, symbol string, lookback int) (models.IVSnapshot, error) {
	lookback = domrepo.NormalizeLookback(lookback)
	closes, err := a.closes(ctx, symbol, lookback+a.hvWindow+1)
	if err != nil {
		return models.IVSnapshot{}, err
	}
	hv := scan.HVSeries(closes, a.hvWindow)
	if len(hv) == 0 {
		return models.IVSnapshot{}, &vol.InsufficientDataError{Required: a.hvWindow + 1, Actual: len(closes)}
	}
	hvCurrent := hv[len(hv)-1]

	iv, ok, err := a.md.ATMImpliedVol(ctx, symbol)
	if err != nil {
		return models.IVSnapshot{}, fmt.Errorf("atm iv %s: %w", symbol, err)
	}
	source := "chain"
	if !ok {
		iv = hvCurrent
		source = "hv_proxy"
	}

	low, high := hv[0], hv[0]
	for _, v := range hv {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	pct := scan.PercentileRank(hv, iv)

	snap := models.IVSnapshot{
		Symbol:       symbol,
		Timestamp:    time.Now().UTC(),
		Spot:         a.spot(symbol, closes),
		ATMIV:        iv,
		IVSource:     source,
		HVCurrent:    hvCurrent,
		IVPercentile: pct,
		IVRank:       scan.IVRank(iv, low, high),
		Lookback:     lookback,
		Signal:       scan.TrackerSignal(pct),
	}

	term, err := a.md.TermStructure(ctx, symbol)
	if err != nil {
		a.metrics.RecordError("term_structure")
	} else {
		snap.Term = term
	}
	return snap, nil
}

// Correlation builds the pairwise return correlation matrix for a basket
// and flags the pairs whose recent correlation runs hot.
func (a *VolAnalyzer) Correlation(ctx context.Context, symbols []string, window int, threshold float64) (models.CorrReport, error) {
	if len(symbols) < 2 {
		return models.CorrReport{}, &vol.InvalidInputError{Reason: "at least 2 symbols required"}
	}
	sample := window * 4
	if sample < domrepo.MinLookback {
		sample = domrepo.MinLookback
	}
	returns := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		closes, err := a.closes(ctx, sym, sample+1)
		if err != nil {
			return models.CorrReport{}, err
		}
		rs, err := vol.LogReturns(closes)
		if err != nil {
			return models.CorrReport{}, err
		}
		returns[sym] = rs
	}

	matrix, err := scan.CorrMatrix(symbols, returns, window)
	if err != nil {
		return models.CorrReport{}, err
	}
	regime, err := scan.DetectCorrRegime(symbols, returns, window, threshold)
	if err != nil {
		return models.CorrReport{}, err
	}
	pairs := make([]models.CorrPair, len(regime.Pairs))
	for i, p := range regime.Pairs {
		pairs[i] = models.CorrPair{A: p.A, B: p.B, Current: p.Current, Average: p.Average, Regime: p.Regime}
	}
	return models.CorrReport{
		Symbols: symbols,
		Window:  window,
		Matrix:  matrix,
		Pairs:   pairs,
		Current: regime.Current,
		Average: regime.Average,
		Regime:  regime.Regime,
	}, nil
}

func (a *VolAnalyzer) spot(symbol string, closes []float64) float64 {
	if a.book != nil {
		if p, ok := a.book.Get(symbol); ok {
			return p
		}
	}
	if len(closes) > 0 {
		return closes[len(closes)-1]
	}
	return 0
}
