package event

import (
	"time"

	"github.com/google/uuid"
)

// Categories an event may carry. A nil category is allowed.
var Categories = []string{"Academic", "Social", "Sports", "Arts", "Career", "Community Service", "Other"}

// ValidCategory reports whether the given category is one of the enumerated
// values.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Event represents a club event. CreatedBy must be the owner of the club the
// event belongs to. Price is null exactly when the event is free.
type Event struct {
	ID          int64     `json:"id"`
	ClubID      int64     `json:"club_id"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    *string   `json:"category,omitempty"`
	IsFree      bool      `json:"is_free"`
	Price       *float64  `json:"price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Registration represents a principal's attendance registration for an event
type Registration struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"event_id"`
	UserID       uuid.UUID `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`

	// Populated from a LEFT JOIN on profiles; nil when the profile row is
	// missing.
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// DisplayName returns the registrant's name, degrading gracefully when the
// profile row is absent.
func (r *Registration) DisplayName() string {
	if r.FullName != nil && *r.FullName != "" {
		return *r.FullName
	}
	return "Unknown User"
}
