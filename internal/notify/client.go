package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"emvi-jobs/internal/config"
	"emvi-jobs/internal/logging"
	"emvi-jobs/pkg/models"
)

// Client posts activation callbacks to a configured endpoint so downstream
// systems (poster e-mail, marketplace feeds) learn about new listings.
type Client struct {
	endpoint   string
	maxRetries int
	enabled    bool
	httpClient *http.Client
	logger     logging.Logger
}

// ActivationEvent is the callback payload for an activated job post
type ActivationEvent struct {
	Event       string    `json:"event"`
	JobID       string    `json:"job_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	PricingTier string    `json:"pricing_tier"`
	ExpiresAt   time.Time `json:"expires_at"`
	ActivatedAt time.Time `json:"activated_at"`
}

// NewClient creates a callback client from configuration
func NewClient(cfg *config.Config) *Client {
	// At least one attempt regardless of configuration, otherwise the
	// delivery loop never runs.
	maxRetries := cfg.Notify.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		endpoint:   cfg.Notify.Endpoint,
		maxRetries: maxRetries,
		enabled:    cfg.Notify.Enabled && cfg.Notify.Endpoint != "",
		httpClient: &http.Client{Timeout: cfg.Notify.Timeout},
		logger:     logging.GetGlobalLogger(),
	}
}

// JobActivated sends the activation callback in the background. Delivery
// is best-effort: failures are logged after retries and never block the
// webhook response.
func (c *Client) JobActivated(ctx context.Context, job *models.Job) {
	if !c.enabled || job == nil {
		return
	}

	event := ActivationEvent{
		Event:       "job.activated",
		JobID:       job.ID,
		UserID:      job.UserID,
		Title:       job.Title,
		PricingTier: string(job.PricingTier),
		ExpiresAt:   job.ExpiresAt,
		ActivatedAt: time.Now(),
	}

	go c.deliver(event)
}

func (c *Client) deliver(event ActivationEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("Failed to marshal activation event", map[string]interface{}{
			"job_id": event.JobID,
			"error":  err.Error(),
		})
		return
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.post(body); err != nil {
			lastErr = err
			// Linear backoff between attempts
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		c.logger.Info("Activation callback delivered", map[string]interface{}{
			"job_id":  event.JobID,
			"attempt": attempt,
		})
		return
	}

	c.logger.Error("Activation callback failed after retries", map[string]interface{}{
		"job_id":  event.JobID,
		"retries": c.maxRetries,
		"error":   lastErr.Error(),
	})
}

func (c *Client) post(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback endpoint returned %d", resp.StatusCode)
	}
	return nil
}
