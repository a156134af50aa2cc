package payments

import (
	"testing"

	"emvi-jobs/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft() models.JobDraft {
	return models.JobDraft{
		Title:               "Nail Technician",
		Description:         "Full time position at a busy salon",
		Location:            "Houston, TX",
		Category:            "nails",
		CompensationType:    "commission",
		CompensationDetails: "60/40 split",
		Requirements:        []string{"TX license", "2+ years experience"},
		Contact: models.ContactInfo{
			OwnerName: "Kim Tran",
			Phone:     "713-555-0182",
			Email:     "kim@example.com",
			Notes:     "Call after 10am",
		},
		PricingTier: models.TierGold,
		UserID:      "user-123",
	}
}

func TestDraftMetadataRoundTrip(t *testing.T) {
	draft := sampleDraft()

	metadata, err := EncodeDraftMetadata(draft)
	require.NoError(t, err)

	// Lists cross the boundary JSON-encoded into a flat string value
	assert.Equal(t, `["TX license","2+ years experience"]`, metadata["requirements"])

	decoded, err := DecodeDraftMetadata(metadata)
	require.NoError(t, err)
	assert.Equal(t, draft, decoded)
}

func TestEncodeDraftMetadataNilRequirements(t *testing.T) {
	draft := sampleDraft()
	draft.Requirements = nil

	metadata, err := EncodeDraftMetadata(draft)
	require.NoError(t, err)
	assert.Equal(t, "[]", metadata["requirements"])

	decoded, err := DecodeDraftMetadata(metadata)
	require.NoError(t, err)
	assert.Empty(t, decoded.Requirements)
}

func TestDecodeDraftMetadataMissingUserID(t *testing.T) {
	metadata, err := EncodeDraftMetadata(sampleDraft())
	require.NoError(t, err)
	delete(metadata, "user_id")

	_, err = DecodeDraftMetadata(metadata)
	assert.ErrorContains(t, err, "user_id")
}

func TestDecodeDraftMetadataMissingTitle(t *testing.T) {
	metadata, err := EncodeDraftMetadata(sampleDraft())
	require.NoError(t, err)
	delete(metadata, "job_title")

	_, err = DecodeDraftMetadata(metadata)
	assert.ErrorContains(t, err, "job_title")
}

func TestDecodeDraftMetadataMalformedRequirements(t *testing.T) {
	metadata, err := EncodeDraftMetadata(sampleDraft())
	require.NoError(t, err)
	metadata["requirements"] = "not json"

	_, err = DecodeDraftMetadata(metadata)
	assert.Error(t, err)
}
