package flag

import (
	"time"

	"github.com/google/uuid"
)

// TargetType identifies what kind of entity a flag was filed against
type TargetType string

const (
	TargetEvent TargetType = "event"
	TargetClub  TargetType = "club"
)

// Valid reports whether t is a known target type
func (t TargetType) Valid() bool {
	return t == TargetEvent || t == TargetClub
}

// Status represents the review state of a flag
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// Reasons a flag may carry
var Reasons = []string{"spam", "inappropriate", "misleading", "duplicate", "other"}

// ValidReason reports whether the given reason is one of the enumerated values
func ValidReason(reason string) bool {
	for _, r := range Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Flag is a report filed by a principal against an event or a club. One flag
// per (target, reporter); visible to the reporter and the target's owner.
type Flag struct {
	ID         int64      `json:"id"`
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	ReporterID uuid.UUID  `json:"reporter_id"`
	Reason     string     `json:"reason"`
	Details    *string    `json:"details,omitempty"`
	Status     Status     `json:"status"`
	ReviewedBy *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
