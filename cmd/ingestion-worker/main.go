package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/app"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/queue"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Str("schema", cfg.Schema.Version).Msg("Starting ingestion worker")

	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// The worker finalizes submissions; it never enqueues.
	svc, closer, err := app.NewService(cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize intake service")
	}
	defer closer.Close()

	ingestionWorker := worker.NewIngestionWorker(cfg, svc, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ingestionWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Ingestion worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down ingestion worker...")

	cancel()
	<-done
	ingestionWorker.Stop()

	log.Info().Msg("Ingestion worker exited")
}
