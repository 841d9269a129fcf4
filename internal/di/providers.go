package di

import (
	"fmt"
	"time"

	domrepo "Midas/internal/domain/repository"
	domsvc "Midas/internal/domain/service"
	"Midas/internal/handler/api"
	internalrepo "Midas/internal/repository"
	"Midas/internal/service/finnhub"
	"Midas/internal/service/quotering"
	"Midas/internal/service/ratelimit"
	"Midas/internal/service/tiingo"
	"Midas/internal/service/yahoo"
	"Midas/internal/services/scoring"
	"Midas/internal/usecase"
	pkgcache "Midas/pkg/cache"
	"Midas/pkg/config"
	xhttp "Midas/pkg/http"
	pkgkafka "Midas/pkg/kafka"
	applogger "Midas/pkg/logger"
	"Midas/pkg/metrics"
	"Midas/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRateLimiter creates the shared per-provider token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideQuoteRing creates the process-wide quote ring store.
func ProvideQuoteRing() *quotering.Store {
	return quotering.NewStore()
}

// ProvideFeatureCache picks the cache backend: layered memory+Redis when
// Redis is configured, plain in-memory otherwise.
func ProvideFeatureCache(cfg *config.Config) (domrepo.FeatureCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return internalrepo.NewLocalFeatureCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := pkgcache.NewLayeredCache(rc,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
	)
	return internalrepo.NewSharedFeatureCache(layered), nil
}

// ProvideEventPublisher creates the Kafka publisher when events are enabled.
// The same producer also receives aggregated error logs via the logger's
// collector, on a sibling topic.
func ProvideEventPublisher(cfg *config.Config, log *applogger.Logger) (domrepo.EventPublisher, error) {
	if !cfg.Events.Kafka.Enabled {
		return internalrepo.NopEventPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Events.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaEventPublisher(producer, cfg.Events.Kafka.Topic)
	log.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Events.Kafka.Topic + ".logs",
		Publisher:      pub,
	})
	return pub, nil
}

// ProvideSentimentScorer creates the HTTP sentiment scoring client.
func ProvideSentimentScorer(cfg *config.Config) domsvc.SentimentScorer {
	return scoring.NewHTTPSentimentScorer(cfg)
}

// ProvideRecommendationScorer creates the HTTP recommendation scoring client.
func ProvideRecommendationScorer(cfg *config.Config) domsvc.RecommendationScorer {
	return scoring.NewHTTPRecommendationScorer(cfg)
}

// ProvideFeatureAggregator assembles the aggregation pipeline from the
// concrete provider clients.
func ProvideFeatureAggregator(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	sentiment domsvc.SentimentScorer,
	cache domrepo.FeatureCache,
	ring *quotering.Store,
	events domrepo.EventPublisher,
	m domrepo.Metrics,
	log *applogger.Logger,
) *usecase.FeatureAggregator {
	fh := finnhub.NewClient(cfg, limiter)
	ti := tiingo.NewClient(cfg, limiter)
	yh := yahoo.NewClient(cfg, limiter)
	return usecase.NewFeatureAggregator(cfg, fh, yh, ti, fh, ti, fh, sentiment, cache, ring, events, m, log)
}

// ProvideQuoteCollector creates the streaming collector when the Finnhub
// stream is enabled, nil otherwise.
func ProvideQuoteCollector(cfg *config.Config, ring *quotering.Store, m domrepo.Metrics) *usecase.QuoteCollector {
	if !cfg.Providers.Finnhub.StreamEnabled {
		return nil
	}
	return usecase.NewQuoteCollector(finnhub.NewStream(cfg), ring, m)
}

// ProvideOneLinerComposer creates the one-liner composer.
func ProvideOneLinerComposer() *usecase.OneLinerComposer {
	return usecase.NewOneLinerComposer()
}

// ProvideContextHandler creates the context service HTTP handler.
func ProvideContextHandler(log *applogger.Logger, agg *usecase.FeatureAggregator, composer *usecase.OneLinerComposer) xhttp.Handler {
	return api.NewContextEchoHandler(log, agg, composer)
}

// ProvideContextApp creates the context application server.
func ProvideContextApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	events domrepo.EventPublisher,
) *server.ContextApp {
	return server.NewContextApp(cfg, log, handler, collector, events)
}

// ProvideGatewayOrchestrator creates the gateway fan-out use case.
func ProvideGatewayOrchestrator(cfg *config.Config, scorer domsvc.RecommendationScorer, composer *usecase.OneLinerComposer, m domrepo.Metrics, log *applogger.Logger) *usecase.GatewayOrchestrator {
	return usecase.NewGatewayOrchestrator(cfg, scorer, composer, m, log)
}

// ProvideGatewayHandler creates the gateway service HTTP handler.
func ProvideGatewayHandler(log *applogger.Logger, cfg *config.Config, orch *usecase.GatewayOrchestrator) xhttp.Handler {
	return api.NewGatewayEchoHandler(log, cfg, orch)
}

// ProvideGatewayApp creates the gateway application server.
func ProvideGatewayApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *server.GatewayApp {
	return server.NewGatewayApp(cfg, log, handler)
}
