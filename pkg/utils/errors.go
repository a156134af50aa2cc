package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// Pipeline specific errors

// NewInvalidTierError returns an error for a pricing tier outside the
// enumerated set
func NewInvalidTierError(tier string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Invalid pricing tier",
		Detail:  tier,
	}
}

// NewCheckoutError returns an error when the payment provider rejects or
// fails a checkout session creation
func NewCheckoutError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Checkout session creation failed",
		Detail:  detail,
	}
}

// NewWebhookSignatureError returns an error for a webhook payload whose
// signature does not verify against the shared secret
func NewWebhookSignatureError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Webhook signature verification failed",
		Detail:  detail,
	}
}

// NewDuplicateSubmissionError returns an error for a free-path submission
// replayed with an idempotency token that is still being processed
func NewDuplicateSubmissionError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: "Duplicate submission",
		Detail:  detail,
	}
}
