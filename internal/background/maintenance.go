package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emvi-jobs/internal/config"
	"emvi-jobs/internal/logging"
)

// MaintenanceStore is the storage surface the maintenance loop needs
type MaintenanceStore interface {
	ExpireJobs(ctx context.Context, now time.Time) (int64, error)
	PruneWebhookEvents(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Manager runs the periodic maintenance loop: expiring job posts past
// their window and pruning processed webhook events.
type Manager struct {
	cfg    *config.Config
	store  MaintenanceStore
	logger logging.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewManager creates a maintenance manager
func NewManager(cfg *config.Config, store MaintenanceStore) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.GetGlobalLogger(),
	}
}

// Start launches the maintenance loop
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("maintenance manager already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop(loopCtx)

	m.logger.Info("Maintenance manager started", map[string]interface{}{
		"sweep_interval": m.cfg.Maintenance.SweepInterval.String(),
	})

	return nil
}

// Stop stops the maintenance loop, waiting for an in-flight sweep to
// finish or the shutdown context to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.cancel()
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Maintenance manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("maintenance manager shutdown timed out: %w", ctx.Err())
	}
}

// IsHealthy reports whether the loop is running
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Maintenance.SweepInterval)
	defer ticker.Stop()

	// Run one sweep at startup so restarts don't postpone expiry by a
	// full interval.
	m.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Manager) sweep(ctx context.Context) {
	expired, err := m.store.ExpireJobs(ctx, time.Now())
	if err != nil {
		m.logger.Error("Job expiry sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if expired > 0 {
		m.logger.Info("Expired job posts", map[string]interface{}{
			"count": expired,
		})
	}

	pruned, err := m.store.PruneWebhookEvents(ctx, m.cfg.Maintenance.WebhookEventMaxAge)
	if err != nil {
		m.logger.Error("Webhook event pruning failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if pruned > 0 {
		m.logger.Debug("Pruned processed webhook events", map[string]interface{}{
			"count": pruned,
		})
	}
}
