package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"VolPulse/internal/domain/repository"
	domsvc "VolPulse/internal/domain/service"
	"VolPulse/internal/handler/api"
	mid "VolPulse/internal/middleware"
	internalrepo "VolPulse/internal/repository"
	"VolPulse/internal/service/marketdata"
	"VolPulse/internal/services/vol"
	"VolPulse/internal/usecase"
	"VolPulse/pkg/cache"
	pkgch "VolPulse/pkg/clickhouse"
	"VolPulse/pkg/config"
	xhttp "VolPulse/pkg/http"
	pkgkafka "VolPulse/pkg/kafka"
	applogger "VolPulse/pkg/logger"
	"VolPulse/pkg/metrics"
	"VolPulse/pkg/queue"
	"VolPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the ClickHouse bar store and ensures the schema.
func ProvideBarStore(ch *pkgch.Client, l *applogger.Logger) (*internalrepo.CHBarStore, error) {
	store := internalrepo.NewCHBarStore(ch)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideBarStoreReader exposes the store as the read interface.
func ProvideBarStoreReader(s *internalrepo.CHBarStore) repository.BarStore { return s }

// ProvideBarSink exposes the store as the write interface.
func ProvideBarSink(s *internalrepo.CHBarStore) repository.BarSink { return s }

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideBarPublisher creates the Kafka bar publisher.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.BarPublisher {
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertPublisher creates the scan alert publisher, when a topic is set.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if cfg.Kafka.AlertsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceBook creates the shared live price book.
func ProvidePriceBook() *marketdata.PriceBook {
	return marketdata.NewPriceBook()
}

// ProvideMarketDataClient creates the REST market-data client.
func ProvideMarketDataClient(cfg *config.Config, book *marketdata.PriceBook) *marketdata.Client {
	return marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.MarketData.Timeout, book)
}

// ProvideMarketData exposes the client as the domain interface.
func ProvideMarketData(c *marketdata.Client) domsvc.MarketData { return c }

// ProvidePriceStream creates the WebSocket price stream.
func ProvidePriceStream(cfg *config.Config) repository.PriceStream {
	return marketdata.NewStream(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideRedisCache creates the Redis cache when enabled, nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, port := splitHostPort(cfg.Redis.Addr)
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers memory over Redis, or falls back to memory only.
func ProvideCacheService(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

// ProvideForecaster creates the GARCH forecaster.
func ProvideForecaster() *vol.Forecaster {
	return vol.NewForecaster(vol.NewGonumFitter())
}

// ProvideBarProcessor creates the bar processor use case.
func ProvideBarProcessor(
	pub repository.BarPublisher,
	sink repository.BarSink,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(pub, sink, m, cfg.Backend.Type, cfg.Backend.BatchSize, cfg.Backend.BatchTimeout)
}

// ProvideBarCollector creates the daily bar poller.
func ProvideBarCollector(
	md domsvc.MarketData,
	proc *usecase.BarProcessor,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.BarCollector {
	return usecase.NewBarCollector(md, proc, m, l,
		cfg.MarketData.Symbols, cfg.MarketData.PollInterval, cfg.Scan.Lookback)
}

// ProvideTickProcessor creates the tick processor.
func ProvideTickProcessor(book *marketdata.PriceBook, m repository.Metrics) *usecase.TickProcessor {
	return usecase.NewTickProcessor(book, m)
}

// ProvideTickCollector creates the live stream collector with its pipeline.
func ProvideTickCollector(
	stream repository.PriceStream,
	proc *usecase.TickProcessor,
	m repository.Metrics,
) *usecase.TickCollector {
	pipe := mid.NewTickPipeline(proc, m,
		mid.WithMaxRPS(20),
		mid.WithBufferSize(1000),
	)
	return usecase.NewTickCollector(stream, proc, m, pipe)
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(sink repository.BarSink, m repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, sink, m)
}

// ProvideVolAnalyzer creates the volatility analyzer use case.
func ProvideVolAnalyzer(
	store repository.BarStore,
	md domsvc.MarketData,
	forecaster *vol.Forecaster,
	book *marketdata.PriceBook,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.VolAnalyzer {
	return usecase.NewVolAnalyzer(store, md, forecaster, book, m, cfg.Scan.HVWindow)
}

// ProvidePremiumScanUseCase creates the scanning use case.
func ProvidePremiumScanUseCase(
	store repository.BarStore,
	md domsvc.MarketData,
	c cache.Service,
	alerts repository.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PremiumScanUseCase {
	return usecase.NewPremiumScanUseCase(store, md, c, alerts, m, l, usecase.ScanConfig{
		HVWindow:   cfg.Scan.HVWindow,
		FastWindow: cfg.Scan.FastWindow,
		SlowWindow: cfg.Scan.SlowWindow,
		CacheTTL:   cfg.Scan.CacheTTL,
	})
}

// ProvideScanJob creates the background scan job.
func ProvideScanJob(uc *usecase.PremiumScanUseCase, c cache.Service, l *applogger.Logger, cfg *config.Config) *usecase.ScanJob {
	return usecase.NewScanJob(uc, c, l, cfg.Scan.JobTimeout)
}

// ProvideScanQueue creates the Redis job queue when Redis is available.
func ProvideScanQueue(cfg *config.Config, l *applogger.Logger, rc *cache.RedisCache, job *usecase.ScanJob) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Scan.QueueWorkers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rc.Client())
	q.RegisterJob(job)
	return q
}

// ProvideQueueService exposes the queue as the publish interface.
func ProvideQueueService(q *queue.RedisQueue) queue.QueueService {
	if q == nil {
		return nil
	}
	return q
}

// ProvideCandlesUseCase creates the candle retrieval use case.
func ProvideCandlesUseCase(store repository.BarStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	analyzer *usecase.VolAnalyzer,
	scanner *usecase.PremiumScanUseCase,
	candles *usecase.CandlesUseCase,
	qs queue.QueueService,
	c cache.Service,
) xhttp.Handler {
	return api.NewVolEchoHandler(l, analyzer, scanner, candles, qs, c)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	bars *usecase.BarCollector,
	ticks *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	q *queue.RedisQueue,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, bars, ticks, consumer, kh, chClient, q, handler)
}

func splitHostPort(addr string) (string, int) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}
