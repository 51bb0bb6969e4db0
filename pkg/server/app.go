package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"VolPulse/internal/usecase"
	pkgch "VolPulse/pkg/clickhouse"
	"VolPulse/pkg/config"
	xhttp "VolPulse/pkg/http"
	pkgkafka "VolPulse/pkg/kafka"
	applogger "VolPulse/pkg/logger"
	"VolPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	bars       *usecase.BarCollector
	ticks      *usecase.TickCollector
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	queue      *queue.RedisQueue
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	bars *usecase.BarCollector,
	ticks *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	q *queue.RedisQueue,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		bars:     bars,
		ticks:    ticks,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
		queue:    q,
		handler:  handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	// Daily bar poller
	go func() {
		if err := a.bars.Start(ctx); err != nil && err != context.Canceled {
			a.log.Error("bar collector error", applogger.Error(err))
		}
	}()
	a.log.Info("bar collector started", applogger.Strings("symbols", a.cfg.MarketData.Symbols))

	// Live price stream
	if a.ticks != nil {
		if err := a.ticks.Start(ctx); err != nil {
			a.log.Warn("tick collector start error", applogger.Error(err))
		} else {
			a.log.Info("tick collector started")
		}
	}

	// Kafka consumer persists published bars when the kafka backend is active
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Background scan queue
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("scan queue start error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.ticks != nil {
		if err := a.ticks.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("tick collector stop error", applogger.Error(err))
		}
	}
	if err := a.bars.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("bar collector stop error", applogger.Error(err))
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("scan queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// close publisher and sink resources
	if proc := a.bars.Processor(); proc != nil {
		proc.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
