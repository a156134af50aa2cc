package middleware

import (
	"net/http"
	"time"

	"emvi-jobs/pkg/models"
	"emvi-jobs/pkg/utils"

	"github.com/labstack/echo/v4"
)

// maxPostBodyBytes caps submission payloads. The largest legitimate body is
// a job draft with 25 requirements, far under a megabyte.
const maxPostBodyBytes = 1 << 20

// RequestValidation tags every request with an id (echoed in the
// X-Request-ID header) and rejects oversized POST bodies before a handler
// reads them.
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			if c.Request().Method == http.MethodPost && c.Request().ContentLength > maxPostBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error:     "request_too_large",
					Message:   "Request body too large",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			return next(c)
		}
	}
}
