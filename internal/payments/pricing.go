package payments

import (
	"emvi-jobs/internal/config"
	"emvi-jobs/pkg/models"
	"emvi-jobs/pkg/utils"
)

// PriceTable holds the static tier prices used by the resolver
type PriceTable struct {
	StandardCents  int64
	PremiumCents   int64
	GoldCents      int64
	DiamondCents   int64
	Currency       string
	DurationMonths int
	FreeExpiryDays int
}

// PriceTableFromConfig builds the price table from service configuration
func PriceTableFromConfig(cfg *config.Config) PriceTable {
	return PriceTable{
		StandardCents:  cfg.Pricing.StandardCents,
		PremiumCents:   cfg.Pricing.PremiumCents,
		GoldCents:      cfg.Pricing.GoldCents,
		DiamondCents:   cfg.Pricing.DiamondCents,
		Currency:       cfg.Stripe.Currency,
		DurationMonths: cfg.Pricing.DurationMonths,
		FreeExpiryDays: cfg.Pricing.FreeExpiryDays,
	}
}

// Eligibility carries the user flags consulted by the resolver
type Eligibility struct {
	IsDiamondInvited  bool
	OnDiamondWaitlist bool
	IsFirstPost       bool
}

// ResolvePricing maps a requested tier and the user's eligibility flags to
// a PricingSelection. Free tier and diamond-invite/waitlist users pay
// nothing; everything else is looked up from the price table.
func ResolvePricing(tier models.PricingTier, eligibility Eligibility, table PriceTable) (models.PricingSelection, error) {
	if !tier.Valid() {
		return models.PricingSelection{}, utils.NewInvalidTierError(string(tier))
	}

	selection := models.PricingSelection{
		Tier:           tier,
		Currency:       table.Currency,
		DurationMonths: table.DurationMonths,
	}

	if tier == models.TierFree {
		selection.IsFreeEligible = true
		return selection, nil
	}

	// Diamond-eligibility override: invited or waitlisted users skip
	// payment on the top tier.
	if tier == models.TierDiamond && (eligibility.IsDiamondInvited || eligibility.OnDiamondWaitlist) {
		selection.IsFreeEligible = true
		return selection, nil
	}

	switch tier {
	case models.TierStandard:
		selection.PriceCents = table.StandardCents
	case models.TierPremium:
		selection.PriceCents = table.PremiumCents
	case models.TierGold:
		selection.PriceCents = table.GoldCents
	case models.TierDiamond:
		selection.PriceCents = table.DiamondCents
	}

	return selection, nil
}
