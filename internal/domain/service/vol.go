package service

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
)

// ModelFitter estimates GARCH(1,1) parameters from a scaled return series.
// Implementations must be deterministic for identical input.
type ModelFitter interface {
	FitGARCH(returns []float64) (models.GarchFit, error)
}

// MarketData supplies historical bars and option-chain snapshots.
type MarketData interface {
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	// ATMImpliedVol returns the at-the-money implied vol for the nearest
	// listed expiry. ok is false when no usable chain exists; callers fall
	// back to a historical-vol proxy in that case. err is reserved for
	// transport failures and never signals a merely missing chain.
	ATMImpliedVol(ctx context.Context, symbol string) (iv float64, ok bool, err error)
	TermStructure(ctx context.Context, symbol string) ([]models.TermPoint, error)
}
