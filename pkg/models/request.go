package models

// SubmitJobRequest is the body of POST /api/v1/jobs. The client picks a
// tier up front; the server decides whether payment is required.
type SubmitJobRequest struct {
	Title               string      `json:"title" validate:"required,min=3,max=200"`
	Description         string      `json:"description" validate:"max=10000"`
	Location            string      `json:"location" validate:"max=200"`
	Category            string      `json:"category" validate:"max=100"`
	CompensationType    string      `json:"compensation_type" validate:"max=50"`
	CompensationDetails string      `json:"compensation_details" validate:"max=500"`
	Requirements        []string    `json:"requirements" validate:"max=25,dive,max=300"`
	ContactName         string      `json:"contact_name" validate:"max=100"`
	ContactPhone        string      `json:"contact_phone" validate:"max=30"`
	ContactEmail        string      `json:"contact_email" validate:"omitempty,email"`
	ContactNotes        string      `json:"contact_notes" validate:"max=1000"`
	PricingTier         string      `json:"pricing_tier" validate:"required"`
	UserID              string      `json:"user_id" validate:"required"`
}

// Draft converts the request into the in-flight JobDraft representation
func (r *SubmitJobRequest) Draft() JobDraft {
	return JobDraft{
		Title:               r.Title,
		Description:         r.Description,
		Location:            r.Location,
		Category:            r.Category,
		CompensationType:    r.CompensationType,
		CompensationDetails: r.CompensationDetails,
		Requirements:        r.Requirements,
		Contact: ContactInfo{
			OwnerName: r.ContactName,
			Phone:     r.ContactPhone,
			Email:     r.ContactEmail,
			Notes:     r.ContactNotes,
		},
		PricingTier: PricingTier(r.PricingTier),
		UserID:      r.UserID,
	}
}
