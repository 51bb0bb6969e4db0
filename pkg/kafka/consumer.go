package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	applogger "VolPulse/pkg/logger"
)

// MessageHandler consumes messages from one topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	brokers    []string
	groupID    string
	retryMax   int
	backoffMin time.Duration
	backoffMax time.Duration
	minBytes   int
	maxBytes   int
}

func WithConsumerBrokers(brokers []string) ConsumerOption {
	return func(c *consumerConfig) { c.brokers = brokers }
}

func WithConsumerGroupID(groupID string) ConsumerOption {
	return func(c *consumerConfig) {
		if groupID != "" {
			c.groupID = groupID
		}
	}
}

// WithConsumerRetry bounds handler retries and their backoff range.
func WithConsumerRetry(max int, backoffMin, backoffMax time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		c.retryMax = max
		c.backoffMin = backoffMin
		c.backoffMax = backoffMax
	}
}

func WithConsumerFetch(minBytes, maxBytes int) ConsumerOption {
	return func(c *consumerConfig) {
		c.minBytes = minBytes
		c.maxBytes = maxBytes
	}
}

// Consumer runs one reader goroutine per registered topic. A failing handler
// is retried with exponential backoff; after the retry budget the message is
// logged, dropped, and its offset committed so one bad payload cannot wedge
// the partition.
type Consumer struct {
	cfg      consumerConfig
	log      *applogger.Logger
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	hook     ConsumerHook
	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewConsumer(log *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := consumerConfig{
		groupID:    "volpulse",
		retryMax:   3,
		backoffMin: 100 * time.Millisecond,
		backoffMax: 2 * time.Second,
		minBytes:   1,
		maxBytes:   10 << 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.brokers) == 0 {
		return nil, errors.New("kafka consumer: brokers are required")
	}
	if cfg.backoffMin <= 0 {
		cfg.backoffMin = 100 * time.Millisecond
	}
	if cfg.backoffMax < cfg.backoffMin {
		cfg.backoffMax = cfg.backoffMin
	}
	return &Consumer{
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]MessageHandler),
		hook:     NoopHook{},
		stop:     make(chan struct{}),
	}, nil
}

// RegisterHandler binds a handler to its topic. Must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	c.handlers[h.Topic()] = h
}

// WithConsumerHook installs a lifecycle hook. Must be called before Start.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}
	for topic, h := range c.handlers {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.brokers,
			Topic:    topic,
			GroupID:  c.cfg.groupID,
			MinBytes: c.cfg.minBytes,
			MaxBytes: c.cfg.maxBytes,
		})
		c.readers = append(c.readers, r)
		c.wg.Add(1)
		go c.consume(r, h)
		c.log.Info("kafka consumer listening", applogger.String("topic", topic))
	}
	return nil
}

// Stop closes the readers, which unblocks the fetch loops, and waits for
// them within the context deadline.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		for _, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Warn("kafka reader close", applogger.Error(cerr))
			}
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("kafka consumer stop: %w", ctx.Err())
		}
	})
	return err
}

func (c *Consumer) consume(r *kafka.Reader, h MessageHandler) {
	defer c.wg.Done()
	topic := h.Topic()
	for {
		msg, err := r.FetchMessage(context.Background())
		if err != nil {
			select {
			case <-c.stop:
				return
			default:
			}
			c.log.Warn("kafka fetch", applogger.String("topic", topic), applogger.Error(err))
			time.Sleep(c.cfg.backoffMin)
			continue
		}
		if herr := c.handle(h, msg.Value); herr != nil {
			c.log.Error("kafka message dropped",
				applogger.String("topic", topic),
				applogger.Int("attempts", c.cfg.retryMax+1),
				applogger.Error(herr),
			)
		}
		if cerr := r.CommitMessages(context.Background(), msg); cerr != nil {
			c.log.Warn("kafka commit", applogger.String("topic", topic), applogger.Error(cerr))
		}
	}
}

func (c *Consumer) handle(h MessageHandler, data []byte) error {
	ctx, payload, err := c.hook.BeforeHandle(context.Background(), h.Topic(), data)
	if err != nil {
		return err
	}
	for attempt := 0; ; attempt++ {
		err = c.invoke(ctx, h, payload)
		c.hook.AfterHandle(ctx, h.Topic(), payload, err)
		if err == nil || attempt >= c.cfg.retryMax {
			return err
		}
		select {
		case <-time.After(c.backoff(attempt)):
		case <-c.stop:
			return err
		}
	}
}

// invoke shields the reader goroutine from handler panics.
func (c *Consumer) invoke(ctx context.Context, h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, data)
}

func (c *Consumer) backoff(attempt int) time.Duration {
	d := c.cfg.backoffMin << uint(attempt)
	if d > c.cfg.backoffMax || d <= 0 {
		d = c.cfg.backoffMax
	}
	return d
}
