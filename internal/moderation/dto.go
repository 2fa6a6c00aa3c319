package moderation

import "github.com/asu-connect/api/internal/club"

// DecideClubRequest represents an admin's approval decision on a club
type DecideClubRequest struct {
	Status club.ClubStatus `json:"status" validate:"required,oneof=approved rejected"`
	Notes  *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// LogResponse represents a moderation log entry
type LogResponse struct {
	ID         int64   `json:"id"`
	AdminID    string  `json:"admin_id"`
	Action     string  `json:"action"`
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// Validate checks the requested status is a valid admin decision
func (r *DecideClubRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.Status != club.ClubStatusApproved && r.Status != club.ClubStatusRejected {
		fields["status"] = "must be approved or rejected"
	}
	if r.Notes != nil && len(*r.Notes) > 500 {
		fields["notes"] = "must be at most 500 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ToResponse converts a LogEntry model to a LogResponse DTO
func (e *LogEntry) ToResponse() *LogResponse {
	return &LogResponse{
		ID:         e.ID,
		AdminID:    e.AdminID.String(),
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
