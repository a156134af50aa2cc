package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"emvi-jobs/internal/config"
	"emvi-jobs/internal/logging"
	"emvi-jobs/pkg/models"
	"emvi-jobs/pkg/utils"
)

// Store is the persistence surface the payment pipeline needs
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	InsertPaidJob(ctx context.Context, job *models.Job) (*models.Job, bool, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetJobBySessionID(ctx context.Context, sessionID string) (*models.Job, error)
	AppendPaymentLog(ctx context.Context, entry *models.PaymentLog) error
	RecordWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error)
	MarkWebhookEventProcessed(ctx context.Context, eventID string) error
	GetUserPrivilege(ctx context.Context, userID string) (*models.UserPrivilege, error)
	TagUserJobPoster(ctx context.Context, userID string) error
}

// TokenStore reserves client-supplied idempotency tokens for the free path
type TokenStore interface {
	ReserveIdempotencyToken(ctx context.Context, token string) (bool, error)
	CompleteIdempotencyToken(ctx context.Context, token, jobID string) error
	ReleaseIdempotencyToken(ctx context.Context, token string) error
	LookupIdempotencyToken(ctx context.Context, token string) (jobID string, ok bool, err error)
	CacheSessionJob(ctx context.Context, sessionID, jobID string) error
	GetCachedSessionJob(ctx context.Context, sessionID string) (string, error)
}

// Notifier is told about activated jobs so downstream systems (poster
// e-mail, feeds) can react. Failures are logged, never surfaced.
type Notifier interface {
	JobActivated(ctx context.Context, job *models.Job)
}

// InitiateResult is the outcome of a submission: either an activated job
// (free path) or a checkout redirect (paid path).
type InitiateResult struct {
	Job         *models.Job
	CheckoutURL string
	SessionID   string
	Pricing     models.PricingSelection
}

// Service orchestrates the payment-to-activation pipeline
type Service struct {
	cfg      *config.Config
	table    PriceTable
	store    Store
	tokens   TokenStore
	checkout SessionCreator
	notifier Notifier
	logger   logging.Logger
}

// NewService wires the pipeline together
func NewService(cfg *config.Config, store Store, tokens TokenStore, checkout SessionCreator, notifier Notifier) *Service {
	return &Service{
		cfg:      cfg,
		table:    PriceTableFromConfig(cfg),
		store:    store,
		tokens:   tokens,
		checkout: checkout,
		notifier: notifier,
		logger:   logging.GetGlobalLogger(),
	}
}

// ResolveForUser resolves pricing for a draft, looking up the submitting
// user's privilege flags for the diamond eligibility override.
func (s *Service) ResolveForUser(ctx context.Context, draft models.JobDraft) (models.PricingSelection, error) {
	eligibility := Eligibility{}
	if draft.PricingTier == models.TierDiamond {
		privilege, err := s.store.GetUserPrivilege(ctx, draft.UserID)
		if err != nil {
			return models.PricingSelection{}, fmt.Errorf("resolve user eligibility: %w", err)
		}
		eligibility.IsDiamondInvited = privilege.IsDiamondInvited
		eligibility.OnDiamondWaitlist = privilege.OnDiamondWaitlist
		eligibility.IsFirstPost = !privilege.HasPostedJob
	}

	return ResolvePricing(draft.PricingTier, eligibility, s.table)
}

// InitiatePayment runs the submission flow. Free-eligible drafts are
// activated immediately; paid drafts get a checkout session and no job row
// until the webhook fires.
func (s *Service) InitiatePayment(ctx context.Context, draft models.JobDraft, idempotencyToken string) (*InitiateResult, error) {
	pricing, err := s.ResolveForUser(ctx, draft)
	if err != nil {
		return nil, err
	}

	if pricing.IsFreeEligible {
		job, err := s.activateFreeJob(ctx, draft, pricing, idempotencyToken)
		if err != nil {
			return nil, err
		}
		return &InitiateResult{Job: job, Pricing: pricing}, nil
	}

	sess, err := s.checkout.CreateJobCheckoutSession(ctx, draft, pricing)
	if err != nil {
		s.logger.Error("Checkout session creation failed", map[string]interface{}{
			"user_id": draft.UserID,
			"tier":    string(draft.PricingTier),
			"error":   err.Error(),
		})
		return nil, utils.NewCheckoutError(err.Error())
	}

	s.logger.Info("Checkout session created", map[string]interface{}{
		"user_id":    draft.UserID,
		"tier":       string(draft.PricingTier),
		"session_id": utils.TruncateSessionID(sess.ID),
	})

	return &InitiateResult{CheckoutURL: sess.URL, SessionID: sess.ID, Pricing: pricing}, nil
}

// activateFreeJob inserts an active job for a free-eligible submission.
// The idempotency token makes retried requests return the original row
// instead of inserting twice.
func (s *Service) activateFreeJob(ctx context.Context, draft models.JobDraft, pricing models.PricingSelection, token string) (*models.Job, error) {
	if s.tokens == nil {
		token = ""
	}
	if token != "" {
		reserved, err := s.tokens.ReserveIdempotencyToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency token: %w", err)
		}
		if !reserved {
			jobID, _, err := s.tokens.LookupIdempotencyToken(ctx, token)
			if err != nil {
				return nil, err
			}
			if jobID == "" {
				return nil, utils.NewDuplicateSubmissionError("submission with this idempotency key is still processing")
			}
			return s.store.GetJob(ctx, jobID)
		}
	}

	now := time.Now()
	job := &models.Job{
		ID:                  utils.GenerateJobID(),
		Title:               draft.Title,
		Description:         draft.Description,
		Location:            draft.Location,
		Category:            draft.Category,
		CompensationType:    draft.CompensationType,
		CompensationDetails: draft.CompensationDetails,
		Requirements:        models.MarshalRequirements(draft.Requirements),
		Contact:             draft.Contact,
		UserID:              draft.UserID,
		Status:              models.JobStatusActive,
		PricingTier:         draft.PricingTier,
		PaymentStatus:       models.PaymentStatusSuccess,
		ExpiresAt:           now.AddDate(0, 0, s.table.FreeExpiryDays),
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		if token != "" {
			_ = s.tokens.ReleaseIdempotencyToken(ctx, token)
		}
		return nil, fmt.Errorf("activate free job: %w", err)
	}

	if err := s.store.AppendPaymentLog(ctx, &models.PaymentLog{
		UserID:        draft.UserID,
		ListingID:     job.ID,
		PlanType:      "job",
		PricingTier:   string(draft.PricingTier),
		PaymentStatus: models.PaymentStatusSuccess,
		ExpiresAt:     job.ExpiresAt,
	}); err != nil {
		s.logger.Error("Failed to append payment log for free post", map[string]interface{}{
			"job_id":  job.ID,
			"user_id": draft.UserID,
			"error":   err.Error(),
		})
	}

	if err := s.store.TagUserJobPoster(ctx, draft.UserID); err != nil {
		s.logger.Warn("Failed to tag user as job poster", map[string]interface{}{
			"user_id": draft.UserID,
			"error":   err.Error(),
		})
	}

	if token != "" {
		if err := s.tokens.CompleteIdempotencyToken(ctx, token, job.ID); err != nil {
			s.logger.Warn("Failed to record idempotency token completion", map[string]interface{}{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		}
	}

	s.logger.Info("Free job post activated", map[string]interface{}{
		"job_id":  job.ID,
		"user_id": draft.UserID,
		"tier":    string(draft.PricingTier),
	})

	if s.notifier != nil {
		s.notifier.JobActivated(ctx, job)
	}

	return job, nil
}

// HandleWebhook processes a provider webhook delivery. It verifies the
// signature, reconstructs the job from session metadata, and inserts the
// row keyed by the session id so redelivery cannot duplicate it.
// The returned status code is what the endpoint reports to the provider.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (int, *models.Job, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.cfg.Stripe.WebhookSecret)
	if err != nil {
		s.logger.Error("Webhook signature verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return http.StatusBadRequest, nil, utils.NewWebhookSignatureError(err.Error())
	}

	if event.Type != "checkout.session.completed" {
		s.logger.Debug("Ignoring webhook event", map[string]interface{}{
			"event_type": string(event.Type),
			"event_id":   event.ID,
		})
		return http.StatusOK, nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return http.StatusBadRequest, nil, utils.NewBadRequestError(fmt.Sprintf("failed to parse checkout session: %v", err))
	}

	logger := s.logger.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"session_id": utils.TruncateSessionID(session.ID),
	})

	// Only a fully processed event counts as a duplicate. A recorded but
	// unprocessed event means a prior attempt failed before activation, so
	// the redelivery must run the insert again; the session-id unique index
	// keeps that re-run from duplicating anything.
	alreadyProcessed, err := s.store.RecordWebhookEvent(ctx, event.ID, string(event.Type))
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}
	if alreadyProcessed {
		logger.Info("Webhook event already processed, skipping")
		job, err := s.store.GetJobBySessionID(ctx, session.ID)
		if err != nil {
			return http.StatusInternalServerError, nil, err
		}
		return http.StatusOK, job, nil
	}

	draft, err := DecodeDraftMetadata(session.Metadata)
	if err != nil {
		logger.Error("Webhook metadata rejected", map[string]interface{}{"error": err.Error()})
		return http.StatusBadRequest, nil, utils.NewBadRequestError(err.Error())
	}

	now := time.Now()
	sessionID := session.ID
	job := &models.Job{
		ID:                  utils.GenerateJobID(),
		Title:               draft.Title,
		Description:         draft.Description,
		Location:            draft.Location,
		Category:            draft.Category,
		CompensationType:    draft.CompensationType,
		CompensationDetails: draft.CompensationDetails,
		Requirements:        models.MarshalRequirements(draft.Requirements),
		Contact:             draft.Contact,
		UserID:              draft.UserID,
		Status:              models.JobStatusActive,
		PricingTier:         draft.PricingTier,
		StripeSessionID:     &sessionID,
		PaymentStatus:       models.PaymentStatusCompleted,
		// Expiry is dated from activation: the paid window starts when the
		// listing goes live, not when checkout opened.
		ExpiresAt: now.AddDate(0, s.table.DurationMonths, 0),
	}

	inserted, created, err := s.store.InsertPaidJob(ctx, job)
	if err != nil {
		logger.Error("Failed to insert paid job", map[string]interface{}{
			"user_id": draft.UserID,
			"error":   err.Error(),
		})
		return http.StatusInternalServerError, nil, err
	}

	if created {
		paymentID := session.ID
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			paymentID = session.PaymentIntent.ID
		}
		if err := s.store.AppendPaymentLog(ctx, &models.PaymentLog{
			UserID:          draft.UserID,
			ListingID:       inserted.ID,
			PlanType:        "job",
			PricingTier:     string(draft.PricingTier),
			PaymentStatus:   models.PaymentStatusCompleted,
			StripePaymentID: &paymentID,
			ExpiresAt:       inserted.ExpiresAt,
		}); err != nil {
			logger.Error("Failed to append payment log", map[string]interface{}{
				"job_id": inserted.ID,
				"error":  err.Error(),
			})
		}

		if err := s.store.TagUserJobPoster(ctx, draft.UserID); err != nil {
			logger.Warn("Failed to tag user as job poster", map[string]interface{}{
				"user_id": draft.UserID,
				"error":   err.Error(),
			})
		}

		if s.tokens != nil {
			_ = s.tokens.CacheSessionJob(ctx, session.ID, inserted.ID)
		}

		logger.Info("Paid job post activated", map[string]interface{}{
			"job_id":  inserted.ID,
			"user_id": draft.UserID,
			"tier":    string(draft.PricingTier),
		})

		if s.notifier != nil {
			s.notifier.JobActivated(ctx, inserted)
		}
	} else {
		logger.Info("Paid job already activated for session, redelivery ignored", map[string]interface{}{
			"job_id": inserted.ID,
		})
	}

	if err := s.store.MarkWebhookEventProcessed(ctx, event.ID); err != nil {
		logger.Warn("Failed to mark webhook event processed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return http.StatusOK, inserted, nil
}

// SessionStatus reports whether the webhook has activated a job for the
// given checkout session. The Redis cache answers first; the store is the
// fallback and source of truth.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (*models.Job, bool, error) {
	if s.tokens != nil {
		if jobID, err := s.tokens.GetCachedSessionJob(ctx, sessionID); err == nil && jobID != "" {
			if job, err := s.store.GetJob(ctx, jobID); err == nil {
				return job, true, nil
			}
		}
	}

	job, err := s.store.GetJobBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}
