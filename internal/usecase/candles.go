package usecase

import (
	"context"
	"fmt"
	"time"

	"VolPulse/internal/domain/models"
	domrepo "VolPulse/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving daily bars.
type CandlesUseCase struct {
	store domrepo.BarStore
}

func NewCandlesUseCase(store domrepo.BarStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetCandlesResult struct {
	Symbol string
	From   time.Time
	To     time.Time
	Count  int
	Bars   []models.Bar
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Limit <= 0 {
		p.Limit = 300
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	var bars []models.Bar
	var err error
	if p.From.IsZero() && p.To.IsZero() {
		bars, err = uc.store.GetLatestNBars(ctx, p.Symbol, p.Limit)
	} else {
		if p.To.IsZero() {
			p.To = time.Now().UTC()
		}
		if p.From.After(p.To) {
			return nil, fmt.Errorf("from must be <= to")
		}
		bars, err = uc.store.GetBars(ctx, p.Symbol, p.From, p.To)
	}
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[len(bars)-p.Limit:]
	}

	res := &GetCandlesResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(bars),
		Bars:   bars,
	}
	if len(bars) > 0 {
		res.From = bars[0].Date
		res.To = bars[len(bars)-1].Date
	}
	return res, nil
}
