//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideHTTPClient,
		ProvideMetrics,

		// Data plumbing
		ProvideCache,
		ProvideThrottle,
		ProvideMarketData,
		ProvideConditionsSource,

		// Outputs
		ProvideNotifier,
		ProvideClickHouseClient,
		ProvideRegimeLog,
		ProvideKafkaProducer,
		ProvideEventPublisher,

		// Use cases
		ProvideScanConfig,
		ProvideScanner,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
