package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware configuration. The webhook
// endpoint is excluded: Stripe signs the raw body and expects the handler
// to read it whole, so it manages its own deadline.
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/v1/webhooks/stripe"
		},
	})
}
