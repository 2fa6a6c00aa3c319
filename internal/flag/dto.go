package flag

import "time"

// CreateFlagRequest represents the request to file a flag
type CreateFlagRequest struct {
	TargetType TargetType `json:"target_type" validate:"required,oneof=event club"`
	TargetID   int64      `json:"target_id" validate:"required"`
	Reason     string     `json:"reason" validate:"required"`
	Details    *string    `json:"details,omitempty" validate:"omitempty,max=1000"`
}

// UpdateFlagRequest represents the target owner's review decision
type UpdateFlagRequest struct {
	Status Status `json:"status" validate:"required,oneof=reviewed resolved dismissed"`
}

// FlagResponse represents the response for a flag
type FlagResponse struct {
	ID         int64      `json:"id"`
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	ReporterID string     `json:"reporter_id"`
	Reason     string     `json:"reason"`
	Details    *string    `json:"details,omitempty"`
	Status     Status     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *string    `json:"reviewed_at,omitempty"`
	CreatedAt  string     `json:"created_at"`
}

// Validate checks field constraints and returns per-field messages
func (r *CreateFlagRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if !r.TargetType.Valid() {
		fields["target_type"] = "must be event or club"
	}
	if r.TargetID == 0 {
		fields["target_id"] = "is required"
	}
	if !ValidReason(r.Reason) {
		fields["reason"] = "must be one of spam, inappropriate, misleading, duplicate, other"
	}
	if r.Details != nil && len(*r.Details) > 1000 {
		fields["details"] = "must be at most 1000 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate checks the requested status is a valid review decision
func (r *UpdateFlagRequest) Validate() map[string]string {
	if !r.Status.Valid() || r.Status == StatusPending {
		return map[string]string{"status": "must be reviewed, resolved or dismissed"}
	}
	return nil
}

// ToResponse converts a Flag model to a FlagResponse DTO
func (f *Flag) ToResponse() *FlagResponse {
	resp := &FlagResponse{
		ID:         f.ID,
		TargetType: f.TargetType,
		TargetID:   f.TargetID,
		ReporterID: f.ReporterID.String(),
		Reason:     f.Reason,
		Details:    f.Details,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if f.ReviewedBy != nil {
		s := f.ReviewedBy.String()
		resp.ReviewedBy = &s
	}
	if f.ReviewedAt != nil {
		s := f.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}
