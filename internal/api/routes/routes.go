package routes

import (
	"emvi-jobs/internal/api/handlers"
	"emvi-jobs/internal/api/middleware"
	"emvi-jobs/internal/background"
	"emvi-jobs/internal/config"
	"emvi-jobs/internal/payments"
	"emvi-jobs/internal/storage"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *payments.Service, store *storage.Store, maintenance *background.Manager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	submissionLimiter := middleware.NewSubmissionRateLimiter(cfg)

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(store))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(store, maintenance))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", handlers.SubmitJobHandler(svc), submissionLimiter.Middleware())
			jobs.GET("", handlers.ListJobsHandler(store))
			jobs.GET("/:id", handlers.GetJobHandler(store))
		}

		// Payment provider callback and the client-side polling endpoint
		v1.POST("/webhooks/stripe", handlers.StripeWebhookHandler(svc))
		v1.GET("/payments/session/:session_id", handlers.PaymentStatusHandler(svc))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"service": "EmviApp Job Postings",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
