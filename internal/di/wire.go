//go:build wireinject
// +build wireinject

package di

import (
	"Midas/pkg/config"
	"Midas/pkg/server"

	"github.com/google/wire"
)

// InitializeContextApp wires up the context service.
// Wire will generate the implementation of this function.
func InitializeContextApp(cfg *config.Config) (*server.ContextApp, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideRateLimiter,
		ProvideQuoteRing,
		ProvideFeatureCache,
		ProvideEventPublisher,
		ProvideSentimentScorer,
		ProvideFeatureAggregator,
		ProvideQuoteCollector,
		ProvideOneLinerComposer,
		ProvideContextHandler,
		ProvideContextApp,
	)
	return &server.ContextApp{}, nil
}

// InitializeGatewayApp wires up the gateway service.
func InitializeGatewayApp(cfg *config.Config) (*server.GatewayApp, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideRecommendationScorer,
		ProvideOneLinerComposer,
		ProvideGatewayOrchestrator,
		ProvideGatewayHandler,
		ProvideGatewayApp,
	)
	return &server.GatewayApp{}, nil
}
