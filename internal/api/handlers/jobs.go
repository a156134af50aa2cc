package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"emvi-jobs/internal/logging"
	"emvi-jobs/internal/payments"
	"emvi-jobs/internal/storage"
	"emvi-jobs/pkg/models"
	"emvi-jobs/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// SubmitJobHandler handles job post submissions. Free-eligible tiers come
// back with the activated job; paid tiers come back with a checkout URL.
func SubmitJobHandler(svc *payments.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := contextRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		logger.Info("Job submission received")

		var req models.SubmitJobRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind request", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Request validation failed", map[string]interface{}{"error": err.Error()})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		idempotencyToken := c.Request().Header.Get("Idempotency-Key")

		result, err := svc.InitiatePayment(c.Request().Context(), req.Draft(), idempotencyToken)
		if err != nil {
			return writeServiceError(c, requestID, err)
		}

		if result.Job != nil {
			return c.JSON(http.StatusCreated, models.SubmitJobResponse{
				Success:   true,
				Job:       result.Job,
				Pricing:   &result.Pricing,
				RequestID: requestID,
			})
		}

		return c.JSON(http.StatusOK, models.SubmitJobResponse{
			Success:     true,
			CheckoutURL: result.CheckoutURL,
			SessionID:   result.SessionID,
			Pricing:     &result.Pricing,
			RequestID:   requestID,
		})
	}
}

// ListJobsHandler returns a page of active job posts
func ListJobsHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := contextRequestID(c)

		opts := storage.JobQueryOptions{
			Limit:  parseQueryInt(c, "limit", 50),
			Offset: parseQueryInt(c, "offset", 0),
			UserID: c.QueryParam("user_id"),
		}
		if opts.Limit > 200 {
			opts.Limit = 200
		}

		ctx := c.Request().Context()
		jobs, err := store.ListActiveJobs(ctx, opts)
		if err != nil {
			return writeServiceError(c, requestID, err)
		}
		total, err := store.CountActiveJobs(ctx, opts)
		if err != nil {
			return writeServiceError(c, requestID, err)
		}

		return c.JSON(http.StatusOK, models.JobListResponse{
			Success: true,
			Jobs:    jobs,
			Count:   len(jobs),
			Total:   total,
		})
	}
}

// GetJobHandler returns a single job post by id
func GetJobHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := contextRequestID(c)

		job, err := store.GetJob(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, storage.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "not_found",
					Message:   "Job post not found",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return writeServiceError(c, requestID, err)
		}

		return c.JSON(http.StatusOK, job)
	}
}

// contextRequestID returns the request id set by middleware, generating one
// when the middleware did not run (tests hitting handlers directly).
func contextRequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

func parseQueryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// writeServiceError maps pipeline errors onto HTTP responses
func writeServiceError(c echo.Context, requestID string, err error) error {
	var custom *utils.CustomError
	if errors.As(err, &custom) {
		return c.JSON(custom.Code, models.ErrorResponse{
			Error:     "request_failed",
			Message:   custom.Error(),
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}

	logging.LogWithRequestID(requestID).Error("Request failed", map[string]interface{}{
		"error": err.Error(),
	})
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     "internal_error",
		Message:   "Internal server error",
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
