package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"emvi-jobs/pkg/models"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrJobNotFound is returned when no job row matches the given key
var ErrJobNotFound = errors.New("job not found")

// Store wraps database access for jobs, payment logs, webhook events and
// user privileges.
type Store struct {
	db *gorm.DB
}

// JobQueryOptions provides filters for job listings
type JobQueryOptions struct {
	Limit  int
	Offset int
	UserID string
}

// NewStore creates a Store and auto-migrates the schema
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Job{},
		&models.PaymentLog{},
		&models.WebhookEvent{},
		&models.UserPrivilege{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// CreateJob inserts a job row. Used by the free path, which activates the
// job at insert time.
func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// InsertPaidJob inserts a webhook-activated job keyed by its checkout
// session id. Redelivery of the same session is a no-op: the conflict
// clause leaves the existing row untouched and the original is returned.
func (s *Store) InsertPaidJob(ctx context.Context, job *models.Job) (*models.Job, bool, error) {
	if job.StripeSessionID == nil || *job.StripeSessionID == "" {
		return nil, false, fmt.Errorf("insert paid job: missing stripe session id")
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(job)
	if tx.Error != nil {
		return nil, false, fmt.Errorf("insert paid job: %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		existing, err := s.GetJobBySessionID(ctx, *job.StripeSessionID)
		if err != nil {
			return nil, false, fmt.Errorf("load existing paid job: %w", err)
		}
		return existing, false, nil
	}

	return job, true, nil
}

// GetJob fetches a job by id
func (s *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// GetJobBySessionID fetches the job activated for a checkout session
func (s *Store) GetJobBySessionID(ctx context.Context, sessionID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "stripe_session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job by session id: %w", err)
	}
	return &job, nil
}

// ListActiveJobs returns active job posts, newest first
func (s *Store) ListActiveJobs(ctx context.Context, opts JobQueryOptions) ([]models.Job, error) {
	var jobs []models.Job
	query := s.db.WithContext(ctx).
		Where("status = ?", models.JobStatusActive).
		Order("created_at DESC")
	if opts.UserID != "" {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return jobs, nil
}

// CountActiveJobs returns the number of active job posts
func (s *Store) CountActiveJobs(ctx context.Context, opts JobQueryOptions) (int64, error) {
	var total int64
	query := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ?", models.JobStatusActive)
	if opts.UserID != "" {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count active jobs: %w", err)
	}
	return total, nil
}

// AppendPaymentLog writes an audit record. Payment logs are append-only;
// nothing in the pipeline updates or deletes them.
func (s *Store) AppendPaymentLog(ctx context.Context, entry *models.PaymentLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append payment log: %w", err)
	}
	return nil
}

// CountPaymentLogsForListing returns the number of audit records for a job
func (s *Store) CountPaymentLogsForListing(ctx context.Context, listingID string) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.PaymentLog{}).
		Where("listing_id = ?", listingID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count payment logs: %w", err)
	}
	return total, nil
}

// RecordWebhookEvent records a provider event delivery. Returns true only
// when the event id was already recorded AND fully processed. An existing
// row without a processed stamp means an earlier attempt failed mid-flight,
// so the redelivery must be handled again, not skipped.
func (s *Store) RecordWebhookEvent(ctx context.Context, eventID, eventType string) (alreadyProcessed bool, err error) {
	event := models.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       eventType,
	}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(&event)
	if tx.Error != nil {
		return false, fmt.Errorf("record webhook event: %w", tx.Error)
	}
	if tx.RowsAffected > 0 {
		return false, nil
	}

	var existing models.WebhookEvent
	if err := s.db.WithContext(ctx).First(&existing, "provider_event_id = ?", eventID).Error; err != nil {
		return false, fmt.Errorf("load webhook event: %w", err)
	}
	return existing.ProcessedAt != nil, nil
}

// MarkWebhookEventProcessed stamps a recorded event as fully processed
func (s *Store) MarkWebhookEventProcessed(ctx context.Context, eventID string) error {
	now := time.Now()
	tx := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Update("processed_at", &now)
	if tx.Error != nil {
		return fmt.Errorf("mark webhook event processed: %w", tx.Error)
	}
	return nil
}

// GetUserPrivilege returns the privilege flags for a user. Users without a
// row get zero-value flags rather than an error.
func (s *Store) GetUserPrivilege(ctx context.Context, userID string) (*models.UserPrivilege, error) {
	var privilege models.UserPrivilege
	err := s.db.WithContext(ctx).First(&privilege, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserPrivilege{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get user privilege: %w", err)
	}
	return &privilege, nil
}

// SaveUserPrivilege upserts a privilege row
func (s *Store) SaveUserPrivilege(ctx context.Context, privilege *models.UserPrivilege) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_diamond_invited", "on_diamond_waitlist", "has_posted_job", "tags", "updated_at"}),
	}).Create(privilege)
	if tx.Error != nil {
		return fmt.Errorf("save user privilege: %w", tx.Error)
	}
	return nil
}

// TagUserJobPoster marks a user as having posted a job and applies the
// job-poster tag used by the marketplace profile.
func (s *Store) TagUserJobPoster(ctx context.Context, userID string) error {
	privilege, err := s.GetUserPrivilege(ctx, userID)
	if err != nil {
		return err
	}

	tags := []string{}
	if len(privilege.Tags) > 0 {
		if err := json.Unmarshal(privilege.Tags, &tags); err != nil {
			tags = []string{}
		}
	}
	hasTag := false
	for _, tag := range tags {
		if tag == "job-poster" {
			hasTag = true
			break
		}
	}
	if !hasTag {
		tags = append(tags, "job-poster")
	}

	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal user tags: %w", err)
	}

	privilege.HasPostedJob = true
	privilege.Tags = datatypes.JSON(data)
	return s.SaveUserPrivilege(ctx, privilege)
}

// ExpireJobs flips active jobs whose expiry has passed to expired.
// Returns the number of rows updated.
func (s *Store) ExpireJobs(ctx context.Context, now time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND expires_at < ?", models.JobStatusActive, now).
		Update("status", models.JobStatusExpired)
	if tx.Error != nil {
		return 0, fmt.Errorf("expire jobs: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// PruneWebhookEvents deletes processed webhook events older than maxAge
func (s *Store) PruneWebhookEvents(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	tx := s.db.WithContext(ctx).
		Where("processed_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.WebhookEvent{})
	if tx.Error != nil {
		return 0, fmt.Errorf("prune webhook events: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
