package payments

import (
	"encoding/json"
	"fmt"

	"emvi-jobs/pkg/models"
)

// Checkout session metadata keys. The provider only accepts flat string
// key/value pairs, so the entire JobDraft crosses this boundary
// stringified; list-valued fields are JSON-encoded.
const (
	metaUserID              = "user_id"
	metaJobTitle            = "job_title"
	metaJobCategory         = "job_category"
	metaJobLocation         = "job_location"
	metaJobDescription      = "job_description"
	metaCompensationType    = "compensation_type"
	metaCompensationDetails = "compensation_details"
	metaRequirements        = "requirements"
	metaContactName         = "contact_name"
	metaContactPhone        = "contact_phone"
	metaContactEmail        = "contact_email"
	metaContactNotes        = "contact_notes"
	metaPricingTier         = "pricing_tier"
)

// EncodeDraftMetadata flattens a JobDraft into checkout session metadata.
// The draft does not exist server-side at checkout time; this map is the
// sole carrier of the job payload until the webhook fires.
func EncodeDraftMetadata(draft models.JobDraft) (map[string]string, error) {
	requirements := draft.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	encoded, err := json.Marshal(requirements)
	if err != nil {
		return nil, fmt.Errorf("encode requirements: %w", err)
	}

	return map[string]string{
		metaUserID:              draft.UserID,
		metaJobTitle:            draft.Title,
		metaJobCategory:         draft.Category,
		metaJobLocation:         draft.Location,
		metaJobDescription:      draft.Description,
		metaCompensationType:    draft.CompensationType,
		metaCompensationDetails: draft.CompensationDetails,
		metaRequirements:        string(encoded),
		metaContactName:         draft.Contact.OwnerName,
		metaContactPhone:        draft.Contact.Phone,
		metaContactEmail:        draft.Contact.Email,
		metaContactNotes:        draft.Contact.Notes,
		metaPricingTier:         string(draft.PricingTier),
	}, nil
}

// DecodeDraftMetadata reconstructs a JobDraft from checkout session
// metadata. The owning user id and title are required; a payload without
// them cannot be turned into a job row and is rejected at the boundary.
func DecodeDraftMetadata(metadata map[string]string) (models.JobDraft, error) {
	draft := models.JobDraft{
		Title:               metadata[metaJobTitle],
		Description:         metadata[metaJobDescription],
		Location:            metadata[metaJobLocation],
		Category:            metadata[metaJobCategory],
		CompensationType:    metadata[metaCompensationType],
		CompensationDetails: metadata[metaCompensationDetails],
		Contact: models.ContactInfo{
			OwnerName: metadata[metaContactName],
			Phone:     metadata[metaContactPhone],
			Email:     metadata[metaContactEmail],
			Notes:     metadata[metaContactNotes],
		},
		PricingTier: models.PricingTier(metadata[metaPricingTier]),
		UserID:      metadata[metaUserID],
	}

	if draft.UserID == "" {
		return models.JobDraft{}, fmt.Errorf("metadata missing user_id")
	}
	if draft.Title == "" {
		return models.JobDraft{}, fmt.Errorf("metadata missing job_title")
	}

	requirements := []string{}
	if raw := metadata[metaRequirements]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &requirements); err != nil {
			return models.JobDraft{}, fmt.Errorf("decode requirements: %w", err)
		}
	}
	draft.Requirements = requirements

	return draft, nil
}
