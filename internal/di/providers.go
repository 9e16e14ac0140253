package di

import (
	"context"
	"fmt"
	"time"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
	"Sully/internal/handler/api"
	internalrepo "Sully/internal/repository"
	"Sully/internal/service/elevenlabs"
	"Sully/internal/service/espn"
	"Sully/internal/service/groq"
	"Sully/internal/service/newsapi"
	"Sully/internal/service/yahoo"
	"Sully/internal/usecase"
	pkgcache "Sully/pkg/cache"
	pkgch "Sully/pkg/clickhouse"
	"Sully/pkg/config"
	xhttp "Sully/pkg/http"
	pkgkafka "Sully/pkg/kafka"
	applogger "Sully/pkg/logger"
	"Sully/pkg/metrics"
	"Sully/pkg/server"
)

// logCollectorTopic receives aggregated error logs when Kafka is enabled.
const logCollectorTopic = "sully.logs"

// ProvideLogger creates the application logger. Development gets console
// output, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	level := "info"
	if cfg.Environment == "development" {
		format = "console"
		level = "debug"
	}
	return applogger.New(&applogger.Config{
		Level:  level,
		Format: format,
		Output: "stdout",
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteProvider creates the Yahoo quote client.
func ProvideQuoteProvider(cfg *config.Config) repository.QuoteProvider {
	return yahoo.New(cfg.Quotes.BaseURL, cfg.Quotes.Timeout)
}

// ProvideNewsSource creates the news search client.
func ProvideNewsSource(cfg *config.Config) repository.NewsSource {
	return newsapi.New(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.Timeout)
}

// ProvideSportsSource creates the team record client.
func ProvideSportsSource(cfg *config.Config) repository.SportsSource {
	return espn.New(cfg.Sports.BaseURL, cfg.Sports.Timeout)
}

// ProvideCompleter creates the completion client, or nil when no
// credential is configured. The conversation engine degrades gracefully.
func ProvideCompleter(cfg *config.Config) repository.Completer {
	if cfg.Groq.APIKey == "" {
		return nil
	}
	return groq.New(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, cfg.Groq.Timeout)
}

// ProvideSpeechSynthesizer creates the TTS client.
func ProvideSpeechSynthesizer(cfg *config.Config) repository.SpeechSynthesizer {
	return elevenlabs.New(cfg.Speech.APIKey, cfg.Speech.VoiceID, cfg.Speech.ModelID, cfg.Speech.BaseURL, cfg.Speech.Timeout)
}

// ProvideCacheService creates the record backing store: Redis when
// enabled and reachable, in-process memory otherwise.
func ProvideCacheService(cfg *config.Config, logger *applogger.Logger) pkgcache.Service {
	if cfg.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Redis.Host),
			pkgcache.WithRedisPort(cfg.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err == nil {
			logger.Info("records backed by redis", applogger.String("host", cfg.Redis.Host))
			return rc
		}
		logger.Warn("redis unavailable, records fall back to memory", applogger.Error(err))
	}
	return pkgcache.NewMemoryCache()
}

// ProvideStore creates the record store over the cache service.
func ProvideStore(c pkgcache.Service) repository.Store {
	return internalrepo.NewKVStore(c, 0)
}

// ProvideClickHouseClient creates the analytical database client, or nil
// when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideExchangeLog creates the durable exchange log, or nil when
// ClickHouse is disabled.
func ProvideExchangeLog(chClient *pkgch.Client) (repository.ExchangeLog, error) {
	if chClient == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return internalrepo.NewClickHouseLog(ctx, chClient)
}

// ProvideKafkaProducer creates the broker producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the alert publisher over the producer, or
// nil when the broker is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAggregator creates the data aggregator.
func ProvideAggregator(
	quotes repository.QuoteProvider,
	news repository.NewsSource,
	sports repository.SportsSource,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.Aggregator {
	return usecase.NewAggregator(quotes, news, sports, m, logger)
}

// ProvideSnapshotCache creates the quote snapshot cache.
func ProvideSnapshotCache(agg *usecase.Aggregator, cfg *config.Config, m repository.Metrics, logger *applogger.Logger) *usecase.SnapshotCache {
	return usecase.NewSnapshotCache(agg, cfg.Assistant.Symbols, cfg.Assistant.CacheMaxAge, m, logger)
}

// ProvideConversation creates the conversation engine.
func ProvideConversation(completer repository.Completer, cfg *config.Config) *usecase.Conversation {
	return usecase.NewConversation(completer, models.Personality{Intensity: cfg.Assistant.AccentIntensity})
}

// ProvideRouter creates the message router.
func ProvideRouter(agg *usecase.Aggregator, cache *usecase.SnapshotCache, engine *usecase.Conversation, m repository.Metrics) *usecase.Router {
	return usecase.NewRouter(agg, cache, engine, m)
}

// ProvideBriefing creates the briefing composer.
func ProvideBriefing(
	cache *usecase.SnapshotCache,
	agg *usecase.Aggregator,
	engine *usecase.Conversation,
	store repository.Store,
	logger *applogger.Logger,
) *usecase.Briefing {
	return usecase.NewBriefing(cache, agg, engine, store, logger)
}

// ProvideHandler creates the HTTP route handler.
func ProvideHandler(
	router *usecase.Router,
	cache *usecase.SnapshotCache,
	agg *usecase.Aggregator,
	briefing *usecase.Briefing,
	store repository.Store,
	speech repository.SpeechSynthesizer,
	log repository.ExchangeLog,
	events repository.EventPublisher,
	cfg *config.Config,
	logger *applogger.Logger,
) xhttp.Handler {
	return api.NewHandler(router, cache, agg, briefing, store, speech, logger,
		api.WithExchangeLog(log),
		api.WithEventPublisher(events),
		api.WithChatRateLimit(cfg.Assistant.ChatPerMinute),
		api.WithDefaultVoice(cfg.Speech.VoiceID),
	)
}

// kafkaLogSink adapts the producer to the log collector's publisher.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// closerFunc adapts a func to io.Closer for App shutdown registration.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ProvideApp assembles the application and registers shutdown order.
func ProvideApp(
	cfg *config.Config,
	handler xhttp.Handler,
	logger *applogger.Logger,
	cacheSvc pkgcache.Service,
	log repository.ExchangeLog,
	events repository.EventPublisher,
	producer *pkgkafka.Producer,
) *server.App {
	app := server.New(cfg, handler, logger)

	if producer != nil {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          logCollectorTopic,
			Publisher:      kafkaLogSink{producer: producer},
		})
		app.AddCloser("log_collector", closerFunc(func() error {
			logger.RemoveCollector()
			return nil
		}))
	}

	if events != nil {
		// Closing the publisher closes the shared producer.
		app.AddCloser("event_publisher", events)
	}
	if log != nil {
		app.AddCloser("exchange_log", log)
	}
	if c, ok := cacheSvc.(interface{ Close() error }); ok {
		app.AddCloser("record_store", closerFunc(c.Close))
	}
	return app
}
