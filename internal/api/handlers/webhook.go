package handlers

import (
	"io"
	"net/http"
	"time"

	"emvi-jobs/internal/logging"
	"emvi-jobs/internal/payments"
	"emvi-jobs/pkg/models"

	"github.com/labstack/echo/v4"
)

// StripeWebhookHandler receives provider webhook deliveries. The raw body
// is read whole before parsing because the signature covers the exact
// bytes on the wire.
func StripeWebhookHandler(svc *payments.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := contextRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1024*1024))
		if err != nil {
			logger.Error("Failed to read webhook body", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_payload",
				Message:   "Failed to read request body",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		signature := c.Request().Header.Get("Stripe-Signature")

		status, _, err := svc.HandleWebhook(c.Request().Context(), payload, signature)
		if err != nil {
			return c.JSON(status, models.ErrorResponse{
				Error:     "webhook_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(status, map[string]interface{}{
			"received":   true,
			"request_id": requestID,
		})
	}
}
