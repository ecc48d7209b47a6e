package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/infrastructure/config"
	"marketplace/infrastructure/di"
	grpcapi "marketplace/interfaces/grpc"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger

	srv := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      container.HTTPHandler(true, false),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The catalog gRPC service answers existence checks for other replicas.
	grpcServer := grpcapi.NewServer(grpcapi.NewCatalogServer(container.CatalogService, logger), logger)
	listener, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		logger.Fatal("Failed to listen for gRPC", zap.String("address", cfg.GRPCAddress), zap.Error(err))
	}

	go func() {
		logger.Info("Starting gRPC server", zap.String("address", cfg.GRPCAddress))
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting command API",
			zap.String("address", cfg.HTTPAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreBackend),
			zap.String("transport", cfg.EventTransport),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down command API...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	grpcServer.GracefulStop()

	logger.Info("Command API stopped")
}
