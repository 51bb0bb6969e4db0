package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"VolPulse/pkg/logger"
)

const retrySweepInterval = 5 * time.Second

// RedisQueue is a Redis-list job queue. Publishers LPUSH envelopes, workers
// BRPOP them; a failed job parks in a delayed retry set and lands on a
// dead-letter list once its retry budget is spent.
type RedisQueue struct {
	log    *logger.Logger
	cfg    QueueConfig
	client *redis.Client
	jobs   map[string]Job

	pendingKey string
	retryKey   string
	deadKey    string

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRedisQueue(lgr *logger.Logger, cfg *QueueConfig, client *redis.Client) *RedisQueue {
	c := QueueConfig{Workers: 1, RetryLimit: 3, RetryDelay: 10 * time.Second}
	if cfg != nil {
		if cfg.Workers > 0 {
			c.Workers = cfg.Workers
		}
		if cfg.RetryLimit >= 0 {
			c.RetryLimit = cfg.RetryLimit
		}
		if cfg.RetryDelay > 0 {
			c.RetryDelay = cfg.RetryDelay
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	const prefix = "volpulse:queue"
	return &RedisQueue{
		log:        lgr,
		cfg:        c,
		client:     client,
		jobs:       make(map[string]Job),
		pendingKey: prefix + ":pending",
		retryKey:   prefix + ":retry",
		deadKey:    prefix + ":dead",
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RegisterJob binds a job to its message type. Must be called before Start.
func (q *RedisQueue) RegisterJob(job Job) {
	if _, dup := q.jobs[job.Type()]; dup {
		q.log.Warn("job already registered", logger.String("type", job.Type()))
		return
	}
	q.jobs[job.Type()] = job
}

func (q *RedisQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return errors.New("queue already running")
	}

	pingCtx, cancel := context.WithTimeout(q.ctx, 5*time.Second)
	defer cancel()
	if err := q.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.wg.Add(1)
	go q.retrySweeper()
	q.log.Info("job queue started", logger.Int("workers", q.cfg.Workers))
	return nil
}

func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.log.Info("job queue stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job queue stop: %w", ctx.Err())
	}
}

// PublishMessage enqueues a payload for the job registered under msgType.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	if _, ok := q.jobs[msgType]; !ok {
		return fmt.Errorf("no job registered for type %q", msgType)
	}
	env := envelope{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := q.client.LPush(ctx, q.pendingKey, b).Err(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

func (q *RedisQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		default:
		}
		res, err := q.client.BRPop(q.ctx, time.Second, q.pendingKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			q.log.Error("queue pop", logger.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) == 2 {
			q.dispatch([]byte(res[1]))
		}
	}
}

func (q *RedisQueue) dispatch(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		q.log.Error("queue envelope decode", logger.Error(err))
		return
	}
	job, ok := q.jobs[env.Type]
	if !ok {
		q.log.Error("no job for message", logger.String("type", env.Type), logger.String("id", env.ID))
		return
	}

	// hand jobs the raw JSON so typed payloads survive the round trip
	payload := env.Payload
	if m, isMap := payload.(map[string]interface{}); isMap {
		if b, err := json.Marshal(m); err == nil {
			payload = json.RawMessage(b)
		}
	}

	err := job.Handle(q.ctx, payload)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	q.log.Error("job failed",
		logger.String("job", job.Name()),
		logger.String("id", env.ID),
		logger.Int("attempt", env.Attempts+1),
		logger.Error(err))
	q.requeue(env)
}

// requeue parks the envelope for a delayed retry, or dead-letters it when
// the budget is spent.
func (q *RedisQueue) requeue(env envelope) {
	env.Attempts++
	b, err := json.Marshal(env)
	if err != nil {
		q.log.Error("queue envelope encode", logger.Error(err))
		return
	}
	if env.Attempts > q.cfg.RetryLimit {
		if err := q.client.LPush(context.Background(), q.deadKey, b).Err(); err != nil {
			q.log.Error("dead-letter push", logger.Error(err))
		}
		return
	}
	due := time.Now().Add(q.cfg.RetryDelay)
	err = q.client.ZAdd(context.Background(), q.retryKey, redis.Z{
		Score:  float64(due.Unix()),
		Member: b,
	}).Err()
	if err != nil {
		q.log.Error("retry schedule", logger.Error(err))
	}
}

// retrySweeper moves due retries back onto the pending list.
func (q *RedisQueue) retrySweeper() {
	defer q.wg.Done()
	ticker := time.NewTicker(retrySweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.sweepRetries()
		}
	}
}

func (q *RedisQueue) sweepRetries() {
	due, err := q.client.ZRangeByScore(q.ctx, q.retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			q.log.Error("retry sweep", logger.Error(err))
		}
		return
	}
	for _, member := range due {
		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey, member)
		pipe.LPush(q.ctx, q.pendingKey, member)
		if _, err := pipe.Exec(q.ctx); err != nil && !errors.Is(err, context.Canceled) {
			q.log.Error("retry requeue", logger.Error(err))
		}
	}
}
