package usecase

import (
	"context"

	"VolPulse/internal/domain/models"
	drepo "VolPulse/internal/domain/repository"
	mid "VolPulse/internal/middleware"
	"VolPulse/internal/service/marketdata"
)

// TickProcessor keeps the live price book current.
type TickProcessor struct {
	book    *marketdata.PriceBook
	metrics drepo.Metrics
}

func NewTickProcessor(book *marketdata.PriceBook, metrics drepo.Metrics) *TickProcessor {
	return &TickProcessor{book: book, metrics: metrics}
}

func (p *TickProcessor) Process(_ context.Context, t *models.Tick) error {
	p.book.Set(t.Symbol, t.Price)
	p.metrics.RecordLastPrice(t.Symbol, t.Price)
	return nil
}

// TickCollector consumes the live price stream through the pipeline.
type TickCollector struct {
	stream  drepo.PriceStream
	proc    *TickProcessor
	metrics drepo.Metrics
	pipe    *mid.TickPipeline
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream drepo.PriceStream, proc *TickProcessor, metrics drepo.Metrics, pipe *mid.TickPipeline) *TickCollector {
	return &TickCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the price stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
