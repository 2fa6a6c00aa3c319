package club

import (
	"time"

	"github.com/google/uuid"
)

// ClubStatus represents the approval status of a club
type ClubStatus string

const (
	ClubStatusPending  ClubStatus = "pending"
	ClubStatusApproved ClubStatus = "approved"
	ClubStatusRejected ClubStatus = "rejected"
)

// MemberRole represents the role of a club member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// MemberStatus represents the status of a membership request. There is no
// "left" status: leaving a club deletes the row.
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusApproved MemberStatus = "approved"
	MemberStatusRejected MemberStatus = "rejected"
)

// Club represents a student organization. CreatedBy is the owning principal
// and is immutable; there is no ownership transfer.
type Club struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	Status      ClubStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Member represents a principal's membership in a club
type Member struct {
	ID       int64        `json:"id"`
	ClubID   int64        `json:"club_id"`
	UserID   uuid.UUID    `json:"user_id"`
	Role     MemberRole   `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joined_at"`

	// Populated from a LEFT JOIN on profiles; nil when the profile row is
	// missing.
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// DisplayName returns the member's name, degrading gracefully when the
// profile row is absent.
func (m *Member) DisplayName() string {
	if m.FullName != nil && *m.FullName != "" {
		return *m.FullName
	}
	return "Unknown User"
}
