//go:build wireinject
// +build wireinject

package di

import (
	"MarketRadar/pkg/config"
	"MarketRadar/pkg/server"

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
		ProvideSignalRepository,
		ProvideSignalStore,
		ProvideAlertStore,
		ProvideAlertPublisher,
		ProvideCache,

		// Providers
		ProvideAltDataProvider,
		ProvideEventsProvider,
		ProvideYahooClient,
		ProvideOptionsProvider,
		ProvideStreamClient,
		ProvideBarsProvider,

		// Use cases
		ProvideScoringEngine,
		ProvideIngestor,
		ProvideQueries,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
