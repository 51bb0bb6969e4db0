package repository

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
)

// BarStore provides read-only access to stored daily bars for the analytics
// layer. Results are chronological (oldest first).
type BarStore interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.Bar, error)
}
