//go:build wireinject
// +build wireinject

package di

import (
	"Sully/pkg/config"
	"Sully/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Upstream clients
		ProvideQuoteProvider,
		ProvideNewsSource,
		ProvideSportsSource,
		ProvideCompleter,
		ProvideSpeechSynthesizer,

		// Storage and broker
		ProvideCacheService,
		ProvideStore,
		ProvideClickHouseClient,
		ProvideExchangeLog,
		ProvideKafkaProducer,
		ProvideEventPublisher,

		// Use cases
		ProvideAggregator,
		ProvideSnapshotCache,
		ProvideConversation,
		ProvideRouter,
		ProvideBriefing,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
