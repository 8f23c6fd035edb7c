package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/veritext/veritext/internal/api"
	"github.com/veritext/veritext/internal/config"
	"github.com/veritext/veritext/internal/configs/env"
	"github.com/veritext/veritext/internal/engine"
	mongoInfra "github.com/veritext/veritext/internal/infra/mongo"
	redisInfra "github.com/veritext/veritext/internal/infra/redis"
	"github.com/veritext/veritext/internal/logger"
	"github.com/veritext/veritext/internal/metrics"
	"github.com/veritext/veritext/internal/repository"
	"github.com/veritext/veritext/internal/stream"
	"github.com/veritext/veritext/internal/tokenizer"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting veritext server")

	metrics.InitPrometheus()
	log.Info().Msg("Prometheus metrics initialized")

	// Start metrics server in separate goroutine
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongoInfra.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	// Initialize repositories
	mongoRepo := repository.NewMongoRepository(mongoClient)
	docsRepo := repository.NewDocumentsRepository(mongoRepo)
	checksRepo := repository.NewChecksRepository(mongoRepo)
	termIndex := repository.NewTermIndex(mongoRepo)

	if err := termIndex.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create index collections")
	}

	// Initialize engine
	tok := tokenizer.NewDefault(cfg.TokenizerLanguage, nil)
	statusReporter := stream.NewStatusReporter(redisClient)
	composer := engine.NewComposer(
		tok,
		termIndex,
		docsRepo,
		checksRepo,
		engine.WithStatusReporter(statusReporter),
		engine.WithTopN(cfg.TopN),
		engine.WithMinSpanLength(cfg.MinSpanLength),
	)

	// Worker pool bounds concurrent check execution by CPU
	pool := engine.NewWorkerPool(ctx)
	defer pool.Close()

	// Initialize Redis stream consumer
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		cfg.RedisDeadLetterKey,
		composer,
		pool,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	router := api.SetupRoutes(cfg, composer, docsRepo, checksRepo)

	// Start Redis consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	// Start Gin server
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
