// Package main runs the catalog projector as a Kafka consumer.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"marketplace/infrastructure/config"
	"marketplace/infrastructure/di"
	"marketplace/infrastructure/messaging/kafka"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.EventTransport != config.TransportKafka {
		log.Fatalf("The projector consumes Kafka; EVENT_TRANSPORT is %q", cfg.EventTransport)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger

	consumer := kafka.NewConsumer(
		kafka.NewReader(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic),
		container.Projector,
		kafka.ConsumerConfig{
			MaxAttempts: cfg.KafkaMaxAttempts,
			Backoff:     cfg.KafkaRetryBackoff,
		},
		logger,
	)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("Failed to close consumer", zap.Error(err))
		}
	}()

	// Health and metrics only; the projector serves no API routes.
	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           container.HTTPHandler(false, false),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server failed", zap.Error(err))
		}
	}()

	logger.Info("Starting projector",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID),
	)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown error", zap.Error(err))
	}
	logger.Info("Projector stopped")
}
