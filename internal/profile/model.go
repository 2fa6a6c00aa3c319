package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile extends an auth-provider identity with display attributes. Exactly
// one row per principal; it is provisioned explicitly on the first
// authenticated request rather than by a database trigger.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
