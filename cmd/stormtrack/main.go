package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-track-service/internal/adapter/dataset"
	httpadapter "github.com/couchcryptid/storm-track-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-track-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-service/internal/adapter/predictor"
	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var source pipeline.DatasetSource
	if cfg.DatasetURL != "" {
		source = dataset.NewURLSource(cfg.DatasetURL, cfg.DatasetTimeout, logger)
		logger.Info("dataset source", "url", cfg.DatasetURL)
	} else {
		source = dataset.NewFileSource(cfg.DatasetPath)
		logger.Info("dataset source", "path", cfg.DatasetPath)
	}
	refresher := pipeline.NewRefresher(source, cfg.DatasetRefreshInterval, logger, metrics)

	client := predictor.NewClient(cfg.PredictorURL, cfg.PredictorTimeout, cfg.PredictorRateLimit, metrics, logger)
	cached := predictor.NewCachedPredictor(client, cfg.PredictorCacheSize, metrics)

	// Kafka prediction sink (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaPredictionTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	seasons := pipeline.NewSeasonService(refresher, logger, metrics)
	predictions := pipeline.NewPredictionService(cached, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, seasons, predictions, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start dataset refresher.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("dataset refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
