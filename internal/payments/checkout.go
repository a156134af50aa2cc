package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"emvi-jobs/internal/config"
	"emvi-jobs/pkg/models"
)

// SessionCreator creates hosted checkout sessions for paid job posts
type SessionCreator interface {
	CreateJobCheckoutSession(ctx context.Context, draft models.JobDraft, pricing models.PricingSelection) (*stripe.CheckoutSession, error)
}

// StripeCheckout implements SessionCreator against the Stripe API
type StripeCheckout struct {
	secretKey  string
	successURL string
	cancelURL  string
}

// NewStripeCheckout creates a Stripe-backed session creator
func NewStripeCheckout(cfg *config.Config) *StripeCheckout {
	return &StripeCheckout{
		secretKey:  cfg.Stripe.SecretKey,
		successURL: cfg.Stripe.SuccessURL,
		cancelURL:  cfg.Stripe.CancelURL,
	}
}

// CreateJobCheckoutSession creates a payment-mode Checkout session priced
// from the resolved selection, with the full draft flattened into metadata.
func (c *StripeCheckout) CreateJobCheckoutSession(ctx context.Context, draft models.JobDraft, pricing models.PricingSelection) (*stripe.CheckoutSession, error) {
	if pricing.PriceCents <= 0 {
		return nil, fmt.Errorf("refusing to create checkout session for non-positive price")
	}

	metadata, err := EncodeDraftMetadata(draft)
	if err != nil {
		return nil, err
	}

	stripe.Key = c.secretKey

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(pricing.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Job Post (%s)", pricing.Tier)),
					},
					UnitAmount: stripe.Int64(pricing.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess, nil
}
