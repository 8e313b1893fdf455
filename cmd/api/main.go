package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/api"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/app"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/intake"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/queue"
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

	log.Info().Str("version", cfg.App.Version).Str("schema", cfg.Schema.Version).Msg("Starting API server")

	// Redis is optional; without it the async upload endpoint answers 503
	var jobs intake.JobQueue
	if cfg.Redis.Host != "" {
		redisClient, err := queue.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		jobs = queue.NewProducer(redisClient)
	} else {
		log.Warn().Msg("Redis not configured, asynchronous uploads disabled")
	}

	svc, closer, err := app.NewService(cfg, jobs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize intake service")
	}
	defer closer.Close()

	handler := api.NewHandler(svc, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RecoveryMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
