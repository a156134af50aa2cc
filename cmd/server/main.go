package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emvi-jobs/internal/api/routes"
	"emvi-jobs/internal/background"
	"emvi-jobs/internal/config"
	"emvi-jobs/internal/logging"
	"emvi-jobs/internal/notify"
	"emvi-jobs/internal/payments"
	"emvi-jobs/internal/storage"
	"emvi-jobs/pkg/utils"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()
	logger.Info("Starting EmviApp job posting service")

	// Initialize storage
	store, err := storage.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open store", map[string]interface{}{"error": err.Error()})
	}

	// Initialize Redis for idempotency tokens and session caching
	redisClient := utils.NewRedisClient(cfg)
	if err := redisClient.Ping(context.Background()); err != nil {
		logger.Warn("Redis unreachable at startup, idempotency tokens degraded", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Wire the payment pipeline
	checkout := payments.NewStripeCheckout(cfg)
	notifier := notify.NewClient(cfg)
	svc := payments.NewService(cfg, store, redisClient, checkout, notifier)

	// Start the maintenance loop (job expiry, webhook event pruning)
	maintenance := background.NewManager(cfg, store)
	ctx := context.Background()
	if err := maintenance.Start(ctx); err != nil {
		logger.Fatal("Failed to start maintenance manager", map[string]interface{}{"error": err.Error()})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, svc, store, maintenance)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping maintenance manager...")
		if err := maintenance.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping maintenance manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis client", map[string]interface{}{"error": err.Error()})
		}

		if err := store.Close(); err != nil {
			logger.Error("Error closing store", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
		_ = logging.CloseLogging()
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}
}
