//go:build wireinject
// +build wireinject

package di

import (
	"VolPulse/pkg/config"
	"VolPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Repositories
		ProvideBarStore,
		ProvideBarStoreReader,
		ProvideBarSink,
		ProvideBarPublisher,
		ProvideAlertPublisher,

		// Market data
		ProvidePriceBook,
		ProvideMarketDataClient,
		ProvideMarketData,
		ProvidePriceStream,

		// Engine
		ProvideForecaster,

		// Use cases
		ProvideBarProcessor,
		ProvideBarCollector,
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideKafkaBarsHandler,
		ProvideVolAnalyzer,
		ProvidePremiumScanUseCase,
		ProvideScanJob,
		ProvideScanQueue,
		ProvideQueueService,
		ProvideCandlesUseCase,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
