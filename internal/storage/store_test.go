package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"emvi-jobs/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func activeJob(id, userID string) *models.Job {
	return &models.Job{
		ID:            id,
		Title:         "Nail Technician",
		UserID:        userID,
		Status:        models.JobStatusActive,
		PricingTier:   models.TierStandard,
		PaymentStatus: models.PaymentStatusCompleted,
		ExpiresAt:     time.Now().AddDate(0, 1, 0),
	}
}

func TestInsertPaidJobConflictReturnsOriginal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sessionID := "cs_test_1"
	first := activeJob("job-1", "user-1")
	first.StripeSessionID = &sessionID

	inserted, created, err := store.InsertPaidJob(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "job-1", inserted.ID)

	// Second insert for the same session must not create a second row
	dup := activeJob("job-2", "user-1")
	dup.StripeSessionID = &sessionID

	existing, created, err := store.InsertPaidJob(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "job-1", existing.ID)

	total, err := store.CountActiveJobs(ctx, JobQueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestInsertPaidJobRequiresSessionID(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.InsertPaidJob(context.Background(), activeJob("job-1", "user-1"))
	assert.Error(t, err)
}

func TestMultipleFreeJobsWithoutSessionID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// NULL session ids must not collide on the unique index
	require.NoError(t, store.CreateJob(ctx, activeJob("job-1", "user-1")))
	require.NoError(t, store.CreateJob(ctx, activeJob("job-2", "user-1")))

	total, err := store.CountActiveJobs(ctx, JobQueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestGetJobBySessionIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetJobBySessionID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListActiveJobsFiltering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, activeJob("job-1", "user-1")))
	require.NoError(t, store.CreateJob(ctx, activeJob("job-2", "user-2")))

	expired := activeJob("job-3", "user-1")
	expired.Status = models.JobStatusExpired
	require.NoError(t, store.CreateJob(ctx, expired))

	all, err := store.ListActiveJobs(ctx, JobQueryOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.ListActiveJobs(ctx, JobQueryOptions{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "job-1", mine[0].ID)
}

func TestExpireJobsSweep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stale := activeJob("job-old", "user-1")
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.CreateJob(ctx, stale))

	fresh := activeJob("job-new", "user-1")
	require.NoError(t, store.CreateJob(ctx, fresh))

	flipped, err := store.ExpireJobs(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)

	job, err := store.GetJob(ctx, "job-old")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusExpired, job.Status)

	job, err = store.GetJob(ctx, "job-new")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, job.Status)
}

func TestRecordWebhookEventDedup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	processed, err := store.RecordWebhookEvent(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, processed)

	// Recorded but never marked processed: the earlier attempt failed, so
	// the redelivery is not a duplicate
	processed, err = store.RecordWebhookEvent(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, store.MarkWebhookEventProcessed(ctx, "evt_1"))

	processed, err = store.RecordWebhookEvent(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.RecordWebhookEvent(ctx, "evt_2", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestPruneWebhookEventsKeepsUnprocessed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.RecordWebhookEvent(ctx, "evt_done", "checkout.session.completed")
	require.NoError(t, err)
	require.NoError(t, store.MarkWebhookEventProcessed(ctx, "evt_done"))

	_, err = store.RecordWebhookEvent(ctx, "evt_pending", "checkout.session.completed")
	require.NoError(t, err)

	// A negative maxAge makes every processed event prunable
	pruned, err := store.PruneWebhookEvents(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	// The pending row survived: marking it processed sticks, so a
	// redelivery now reads as a duplicate
	require.NoError(t, store.MarkWebhookEventProcessed(ctx, "evt_pending"))
	processed, err := store.RecordWebhookEvent(ctx, "evt_pending", "checkout.session.completed")
	require.NoError(t, err)
	assert.True(t, processed, "unprocessed events survive pruning")
}

func TestGetUserPrivilegeDefaultsToZeroValue(t *testing.T) {
	store := newTestStore(t)

	privilege, err := store.GetUserPrivilege(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", privilege.UserID)
	assert.False(t, privilege.IsDiamondInvited)
	assert.False(t, privilege.HasPostedJob)
}

func TestTagUserJobPoster(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.TagUserJobPoster(ctx, "user-1"))

	privilege, err := store.GetUserPrivilege(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, privilege.HasPostedJob)
	assert.JSONEq(t, `["job-poster"]`, string(privilege.Tags))

	// Tagging twice must not duplicate the tag
	require.NoError(t, store.TagUserJobPoster(ctx, "user-1"))
	privilege, err = store.GetUserPrivilege(ctx, "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `["job-poster"]`, string(privilege.Tags))
}

func TestSaveUserPrivilegeUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUserPrivilege(ctx, &models.UserPrivilege{
		UserID:            "user-1",
		OnDiamondWaitlist: true,
	}))
	require.NoError(t, store.SaveUserPrivilege(ctx, &models.UserPrivilege{
		UserID:           "user-1",
		IsDiamondInvited: true,
	}))

	privilege, err := store.GetUserPrivilege(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, privilege.IsDiamondInvited)
	assert.False(t, privilege.OnDiamondWaitlist)
}
