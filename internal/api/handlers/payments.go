package handlers

import (
	"errors"
	"net/http"
	"time"

	"emvi-jobs/internal/payments"
	"emvi-jobs/internal/storage"
	"emvi-jobs/pkg/models"

	"github.com/labstack/echo/v4"
)

// PaymentStatusHandler reports whether a checkout session has produced an
// activated job yet. Clients poll it after the hosted checkout redirect:
// 202 means the webhook has not landed, 200 carries the job.
func PaymentStatusHandler(svc *payments.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := contextRequestID(c)

		sessionID := c.Param("session_id")
		if sessionID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_session",
				Message:   "Missing checkout session id",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		job, found, err := svc.SessionStatus(c.Request().Context(), sessionID)
		if err != nil {
			if errors.Is(err, storage.ErrJobNotFound) {
				return c.JSON(http.StatusAccepted, models.PaymentStatusResponse{
					SessionID: sessionID,
					Status:    "processing",
					Timestamp: time.Now(),
				})
			}
			return writeServiceError(c, requestID, err)
		}
		if !found {
			return c.JSON(http.StatusAccepted, models.PaymentStatusResponse{
				SessionID: sessionID,
				Status:    "processing",
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.PaymentStatusResponse{
			SessionID: sessionID,
			Status:    "completed",
			Job:       job,
			Timestamp: time.Now(),
		})
	}
}
