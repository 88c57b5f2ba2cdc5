package di

import (
	"context"
	"fmt"
	"time"

	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/domain/service"
	"MarketRadar/internal/handler/api"
	internalrepo "MarketRadar/internal/repository"
	"MarketRadar/internal/service/fmp"
	"MarketRadar/internal/service/polymarket"
	"MarketRadar/internal/service/resilience"
	"MarketRadar/internal/service/stream"
	"MarketRadar/internal/service/yahoo"
	"MarketRadar/internal/services/scoring"
	"MarketRadar/internal/usecase"
	"MarketRadar/pkg/cache"
	pkgch "MarketRadar/pkg/clickhouse"
	"MarketRadar/pkg/config"
	xhttp "MarketRadar/pkg/http"
	pkgkafka "MarketRadar/pkg/kafka"
	applogger "MarketRadar/pkg/logger"
	"MarketRadar/pkg/metrics"
	"MarketRadar/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
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

// ProvideSignalRepository creates the signal/alert store and ensures
// its schema exists.
func ProvideSignalRepository(client *pkgch.Client, log *applogger.Logger) (*internalrepo.SignalRepository, error) {
	repo := internalrepo.NewSignalRepository(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return repo, nil
}

// ProvideSignalStore exposes the repository as the store interface.
func ProvideSignalStore(repo *internalrepo.SignalRepository) repository.SignalStore {
	return repo
}

// ProvideAlertStore exposes the repository as the alert interface.
func ProvideAlertStore(repo *internalrepo.SignalRepository) repository.AlertStore {
	return repo
}

// ProvideAlertPublisher creates the Kafka fan-out when enabled, a
// no-op otherwise.
func ProvideAlertPublisher(cfg *config.Config, log *applogger.Logger) (repository.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopAlertPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic, log), nil
}

// ProvideCache creates the provider payload cache: Redis when
// configured, in-process otherwise.
func ProvideCache(cfg *config.Config, log *applogger.Logger) cache.Service {
	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
			cache.WithAuth(cfg.Redis.Password, cfg.Redis.DB),
		)
		if err == nil {
			return c
		}
		log.Warn("redis unavailable, using in-memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideAltDataProvider creates the quota-limited, breaker-guarded
// alternative-data client.
func ProvideAltDataProvider(cfg *config.Config, m repository.Metrics, log *applogger.Logger) service.AltDataProvider {
	limiter := resilience.NewRateLimiter(cfg.FMP.RateLimitPerMinute, cfg.FMP.RateLimitPerDay, nil)
	breaker := resilience.NewCircuitBreaker(cfg.FMP.BreakerThreshold, cfg.FMP.BreakerTimeout, nil)
	return fmp.NewClient(cfg.FMP.APIKey, cfg.FMP.RequestTimeout, cfg.FMP.MaxRetries, limiter, breaker, log,
		fmp.WithMetrics(m))
}

// ProvideEventsProvider creates the prediction-market client.
func ProvideEventsProvider(log *applogger.Logger) service.EventsProvider {
	return polymarket.NewClient(log)
}

// ProvideYahooClient creates the REST bars and options client.
func ProvideYahooClient(cacheSvc cache.Service, log *applogger.Logger) *yahoo.Client {
	return yahoo.NewClient(cacheSvc, log)
}

// ProvideOptionsProvider exposes the Yahoo client's options side.
func ProvideOptionsProvider(client *yahoo.Client) service.OptionsProvider {
	return client
}

// ProvideStreamClient creates the websocket trade stream for the
// watchlist. Without an API key the client stays dormant.
func ProvideStreamClient(cfg *config.Config, log *applogger.Logger) *stream.Client {
	opts := []stream.Option{}
	if cfg.Finnhub.WebSocketURL != "" {
		opts = append(opts, stream.WithURL(cfg.Finnhub.WebSocketURL))
	}
	return stream.NewClient(cfg.Finnhub.APIKey, cfg.Watchlist,
		cfg.Finnhub.ReconnectDelay, cfg.Finnhub.PingInterval, log, opts...)
}

// ProvideBarsProvider serves bars from the stream when warmed up, REST
// otherwise.
func ProvideBarsProvider(streamClient *stream.Client, yahooClient *yahoo.Client) service.BarsProvider {
	return stream.NewCompositeBars(streamClient, yahooClient)
}

// ProvideScoringEngine creates the scoring engine with an unfitted
// anomaly model; the app refits it from history at startup.
func ProvideScoringEngine(log *applogger.Logger) *scoring.Engine {
	return scoring.NewEngine(log)
}

// ProvideIngestor wires the ingestion orchestrator.
func ProvideIngestor(
	cfg *config.Config,
	bars service.BarsProvider,
	options service.OptionsProvider,
	events service.EventsProvider,
	altData service.AltDataProvider,
	store repository.SignalStore,
	alerts repository.AlertStore,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	engine *scoring.Engine,
	log *applogger.Logger,
) *usecase.Ingestor {
	return usecase.NewIngestor(
		usecase.IngestConfig{
			Watchlist:        cfg.Watchlist,
			PolymarketQuery:  cfg.Polymarket.Query,
			PolymarketLimit:  cfg.Polymarket.Limit,
			AnomalyThreshold: cfg.Scoring.AnomalyThreshold,
			RefitHistory:     cfg.Scoring.RefitHistory,
		},
		bars, options, events, altData, store, alerts, publisher, m, engine, log,
	)
}

// ProvideQueries wires the read-side usecase.
func ProvideQueries(store repository.SignalStore, alerts repository.AlertStore) *usecase.Queries {
	return usecase.NewQueries(store, alerts)
}

// ProvideHTTPHandler wires the API handler.
func ProvideHTTPHandler(queries *usecase.Queries, ingestor *usecase.Ingestor, log *applogger.Logger) xhttp.Handler {
	return api.NewHandler(queries, ingestor, log)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	ingestor *usecase.Ingestor,
	streamClient *stream.Client,
	store repository.SignalStore,
	publisher repository.AlertPublisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, ingestor, streamClient, store, publisher, handler)
}
