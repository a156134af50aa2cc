package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobStatus represents the lifecycle state of a persisted job post
type JobStatus string

const (
	JobStatusDraft   JobStatus = "draft"
	JobStatusActive  JobStatus = "active"
	JobStatusExpired JobStatus = "expired"
)

// PricingTier represents a named pricing level for a job post
type PricingTier string

const (
	TierFree     PricingTier = "free"
	TierStandard PricingTier = "standard"
	TierPremium  PricingTier = "premium"
	TierGold     PricingTier = "gold"
	TierDiamond  PricingTier = "diamond"
)

// Valid reports whether the tier is one of the five enumerated values
func (t PricingTier) Valid() bool {
	switch t {
	case TierFree, TierStandard, TierPremium, TierGold, TierDiamond:
		return true
	}
	return false
}

// Payment status values recorded on jobs and payment logs
const (
	PaymentStatusSuccess   = "success"
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
)

// ContactInfo holds the poster's contact fields for a job post
type ContactInfo struct {
	OwnerName string `json:"owner_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes,omitempty"`
}

// JobDraft is the in-flight, not-yet-persisted representation of a job post.
// It exists only in the submission request or serialized into checkout
// session metadata until the corresponding Job row is written.
type JobDraft struct {
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Location            string      `json:"location"`
	Category            string      `json:"category"`
	CompensationType    string      `json:"compensation_type"`
	CompensationDetails string      `json:"compensation_details"`
	Requirements        []string    `json:"requirements"`
	Contact             ContactInfo `json:"contact_info"`
	PricingTier         PricingTier `json:"pricing_tier"`
	UserID              string      `json:"user_id"`
}

// Job is the durable job post record. The paid path inserts it for the
// first time inside the webhook handler, keyed by the checkout session id.
type Job struct {
	ID                  string         `gorm:"primaryKey" json:"id"`
	Title               string         `gorm:"not null" json:"title"`
	Description         string         `json:"description"`
	Location            string         `json:"location"`
	Category            string         `json:"category"`
	CompensationType    string         `json:"compensation_type"`
	CompensationDetails string         `json:"compensation_details"`
	Requirements        datatypes.JSON `json:"requirements"`
	Contact             ContactInfo    `gorm:"embedded;embeddedPrefix:contact_" json:"contact_info"`
	UserID              string         `gorm:"not null;index" json:"user_id"`
	Status              JobStatus      `gorm:"index" json:"status"`
	PricingTier         PricingTier    `json:"pricing_tier"`
	StripeSessionID     *string        `gorm:"uniqueIndex" json:"stripe_session_id,omitempty"`
	PaymentStatus       string         `json:"payment_status"`
	ExpiresAt           time.Time      `json:"expires_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// PaymentLog is an append-only audit record, written once per successful
// job creation (free or paid) and never mutated by this pipeline.
type PaymentLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"not null;index" json:"user_id"`
	ListingID       string    `gorm:"index" json:"listing_id"`
	PlanType        string    `json:"plan_type"`
	PricingTier     string    `json:"pricing_tier"`
	PaymentStatus   string    `json:"payment_status"`
	StripePaymentID *string   `json:"stripe_payment_id,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// WebhookEvent records provider webhook deliveries for idempotent
// processing; redelivery of a recorded event id is a no-op.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProviderEventID string     `gorm:"uniqueIndex;not null" json:"provider_event_id"`
	EventType       string     `gorm:"index" json:"event_type"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// UserPrivilege holds per-user eligibility flags consulted by the pricing
// resolver plus the tags applied after a successful post.
type UserPrivilege struct {
	UserID            string         `gorm:"primaryKey" json:"user_id"`
	IsDiamondInvited  bool           `json:"is_diamond_invited"`
	OnDiamondWaitlist bool           `json:"on_diamond_waitlist"`
	HasPostedJob      bool           `json:"has_posted_job"`
	Tags              datatypes.JSON `json:"tags"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// PricingSelection is the resolved pricing outcome for a submission.
// IsFreeEligible implies no payment provider interaction occurs;
// PriceCents > 0 implies a checkout session precedes any Job row.
type PricingSelection struct {
	Tier           PricingTier `json:"tier"`
	PriceCents     int64       `json:"price_cents"`
	Currency       string      `json:"currency"`
	IsFreeEligible bool        `json:"is_free_eligible"`
	DurationMonths int         `json:"duration_months"`
	AutoRenew      bool        `json:"auto_renew"`
}
