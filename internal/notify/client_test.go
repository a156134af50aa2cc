package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emvi-jobs/internal/config"
	"emvi-jobs/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobActivatedDeliversCallback(t *testing.T) {
	received := make(chan ActivationEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event ActivationEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notify.Endpoint = server.URL
	cfg.Notify.Enabled = true
	cfg.Notify.MaxRetries = 1
	cfg.Notify.Timeout = 5 * time.Second

	client := NewClient(cfg)
	client.JobActivated(context.Background(), &models.Job{
		ID:          "job-1",
		UserID:      "user-1",
		Title:       "Nail Technician",
		PricingTier: models.TierGold,
		ExpiresAt:   time.Now().AddDate(0, 1, 0),
	})

	select {
	case event := <-received:
		assert.Equal(t, "job.activated", event.Event)
		assert.Equal(t, "job-1", event.JobID)
		assert.Equal(t, "gold", event.PricingTier)
	case <-time.After(5 * time.Second):
		t.Fatal("activation callback never arrived")
	}
}

func TestDeliverZeroConfiguredRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notify.Endpoint = server.URL
	cfg.Notify.Enabled = true
	cfg.Notify.MaxRetries = 0
	cfg.Notify.Timeout = time.Second

	client := NewClient(cfg)
	assert.Equal(t, 1, client.maxRetries, "retry count is clamped to at least one attempt")

	// A failing endpoint with zero configured retries must log and return,
	// not panic the delivery goroutine
	client.deliver(ActivationEvent{Event: "job.activated", JobID: "job-1"})
}

func TestJobActivatedDisabledDoesNothing(t *testing.T) {
	hit := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notify.Endpoint = server.URL
	cfg.Notify.Enabled = false
	cfg.Notify.MaxRetries = 1
	cfg.Notify.Timeout = time.Second

	client := NewClient(cfg)
	client.JobActivated(context.Background(), &models.Job{ID: "job-1"})

	select {
	case <-hit:
		t.Fatal("disabled client must not call the endpoint")
	case <-time.After(200 * time.Millisecond):
	}
}
