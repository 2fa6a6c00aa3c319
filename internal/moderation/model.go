package moderation

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the moderation log
const (
	ActionClubApproved = "club_approved"
	ActionClubRejected = "club_rejected"
)

// LogEntry is an append-only audit record of an admin action. Entries are
// never updated or deleted.
type LogEntry struct {
	ID         int64     `json:"id"`
	AdminID    uuid.UUID `json:"admin_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
