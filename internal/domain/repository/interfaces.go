package repository

import (
	"context"

	"VolPulse/internal/domain/models"
)

type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type BarPublisher interface {
	Publish(ctx context.Context, b *models.Bar) error
	PublishBatch(ctx context.Context, bars []*models.Bar) error
	Close() error
}

type BarSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	Health(ctx context.Context) error // ping
	Close() error
}

type AlertPublisher interface {
	PublishAlert(ctx context.Context, row models.PremiumRow) error
	Close() error
}

type Metrics interface {
	RecordBarStored(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordVol(symbol, kind string, vol float64)
	RecordScan(outcome string)
	RecordLatency(op string, seconds float64)
}
