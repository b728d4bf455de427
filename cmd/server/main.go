package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/embedding"
	"github.com/pricelens/backend/internal/infrastructure/sink"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Server.Environment)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("model", cfg.Embedding.Model).
		Msg("starting pricelens backend")

	// Embedding oracle
	oracle, err := embedding.NewClient(embedding.Config{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           cfg.Embedding.Timeout,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create embedding client")
	}

	// Embedding cache
	var embeddingCache domain.EmbeddingCache
	switch cfg.Cache.Type {
	case "memory":
		embeddingCache = cache.NewMemoryCache()
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		embeddingCache = redisCache
	case "none":
		// caching disabled
	}
	log.Info().Str("cache_type", cfg.Cache.Type).Msg("embedding cache configured")

	// Record sink
	var recordSink domain.RecordSink
	switch cfg.Output.Type {
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.Output.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Postgres")
		}
		recordSink, err = sink.NewPostgresSink(db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialise Postgres sink")
		}
	default:
		recordSink = sink.NewJSONLSink(cfg.Output.Dir)
	}
	log.Info().Str("output_type", cfg.Output.Type).Msg("record sink configured")

	// Usecase layer
	benchmarkService := usecase.NewBenchmarkService(
		oracle,
		embeddingCache,
		recordSink,
		usecase.BenchmarkServiceConfig{
			SimilarityThreshold:  cfg.Matching.SimilarityThreshold,
			ScrapedCapPerCluster: cfg.Matching.ScrapedCapPerCluster,
			MaxWorkers:           cfg.Workers.Max,
			BatchSize:            cfg.Embedding.BatchSize,
			RetryMaxAttempts:     cfg.Retry.MaxAttempts,
			RetryBackoffMin:      cfg.Retry.BackoffMin,
			RetryBackoffMax:      cfg.Retry.BackoffMax,
			AmazonURLMarkers:     cfg.Matching.AmazonURLMarkers,
			CacheTTL:             cfg.Cache.TTL,
		},
	)
	log.Info().
		Float64("similarity_threshold", cfg.Matching.SimilarityThreshold).
		Int("scraped_cap", cfg.Matching.ScrapedCapPerCluster).
		Int("workers", cfg.Workers.Max).
		Msg("benchmark service configured")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(benchmarkService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// setupLogging configures the global logger: console output in
// development, JSON elsewhere.
func setupLogging(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
