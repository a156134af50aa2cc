package payments

import (
	"errors"
	"testing"

	"emvi-jobs/pkg/models"
	"emvi-jobs/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPriceTable() PriceTable {
	return PriceTable{
		StandardCents:  1999,
		PremiumCents:   2999,
		GoldCents:      4999,
		DiamondCents:   9999,
		Currency:       "usd",
		DurationMonths: 1,
		FreeExpiryDays: 30,
	}
}

func TestResolvePricingFreeTier(t *testing.T) {
	selection, err := ResolvePricing(models.TierFree, Eligibility{}, testPriceTable())
	require.NoError(t, err)

	assert.True(t, selection.IsFreeEligible)
	assert.Equal(t, int64(0), selection.PriceCents)
	assert.Equal(t, models.TierFree, selection.Tier)
}

func TestResolvePricingPaidTiers(t *testing.T) {
	table := testPriceTable()

	tests := []struct {
		tier  models.PricingTier
		cents int64
	}{
		{models.TierStandard, 1999},
		{models.TierPremium, 2999},
		{models.TierGold, 4999},
		{models.TierDiamond, 9999},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			selection, err := ResolvePricing(tt.tier, Eligibility{}, table)
			require.NoError(t, err)

			assert.False(t, selection.IsFreeEligible)
			assert.Equal(t, tt.cents, selection.PriceCents)
			assert.Equal(t, "usd", selection.Currency)
			assert.Equal(t, 1, selection.DurationMonths)
		})
	}
}

func TestResolvePricingDiamondInviteOverride(t *testing.T) {
	table := testPriceTable()

	invited, err := ResolvePricing(models.TierDiamond, Eligibility{IsDiamondInvited: true}, table)
	require.NoError(t, err)
	assert.True(t, invited.IsFreeEligible)
	assert.Equal(t, int64(0), invited.PriceCents)

	waitlisted, err := ResolvePricing(models.TierDiamond, Eligibility{OnDiamondWaitlist: true}, table)
	require.NoError(t, err)
	assert.True(t, waitlisted.IsFreeEligible)
}

func TestResolvePricingOverrideOnlyAppliesToDiamond(t *testing.T) {
	selection, err := ResolvePricing(models.TierGold, Eligibility{IsDiamondInvited: true}, testPriceTable())
	require.NoError(t, err)

	assert.False(t, selection.IsFreeEligible)
	assert.Equal(t, int64(4999), selection.PriceCents)
}

func TestResolvePricingInvalidTier(t *testing.T) {
	_, err := ResolvePricing(models.PricingTier("platinum"), Eligibility{}, testPriceTable())
	require.Error(t, err)

	var custom *utils.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, 400, custom.Code)
}
