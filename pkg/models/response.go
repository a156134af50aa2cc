package models

import "time"

// SubmitJobResponse is returned by POST /api/v1/jobs. Free-eligible
// submissions carry the created job; paid submissions carry the hosted
// checkout URL the client must redirect to.
type SubmitJobResponse struct {
	Success     bool              `json:"success"`
	Job         *Job              `json:"job,omitempty"`
	CheckoutURL string            `json:"checkout_url,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	Pricing     *PricingSelection `json:"pricing,omitempty"`
	RequestID   string            `json:"request_id"`
}

// PaymentStatusResponse reports whether the webhook has activated the job
// for a checkout session. Clients poll this instead of trusting a fixed
// post-redirect delay.
type PaymentStatusResponse struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"` // processing or completed
	Job       *Job      `json:"job,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JobListResponse wraps a page of active job posts
type JobListResponse struct {
	Success bool  `json:"success"`
	Jobs    []Job `json:"jobs"`
	Count   int   `json:"count"`
	Total   int64 `json:"total"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
