package club

// CreateClubRequest represents the request to create a new club
type CreateClubRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// UpdateClubRequest represents the request to update a club
type UpdateClubRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// UpdateMemberRequest represents the owner's decision on a membership request
type UpdateMemberRequest struct {
	Status MemberStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// ClubResponse represents the response for a club
type ClubResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedBy   string            `json:"created_by"`
	Status      ClubStatus        `json:"status"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a club response
type MemberResponse struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	AvatarURL   *string      `json:"avatar_url,omitempty"`
	Role        MemberRole   `json:"role"`
	Status      MemberStatus `json:"status"`
	JoinedAt    string       `json:"joined_at"`
}

// Validate checks field constraints and returns per-field messages
func (r *CreateClubRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.Name == "" {
		fields["name"] = "is required"
	} else if len(r.Name) > 100 {
		fields["name"] = "must be at most 100 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate checks field constraints and returns per-field messages
func (r *UpdateClubRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > 100) {
		fields["name"] = "must be between 1 and 100 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate checks the requested status is a valid owner decision
func (r *UpdateMemberRequest) Validate() map[string]string {
	if r.Status != MemberStatusApproved && r.Status != MemberStatusRejected {
		return map[string]string{"status": "must be approved or rejected"}
	}
	return nil
}

// ToResponse converts a Club model to a ClubResponse DTO
func (c *Club) ToResponse() *ClubResponse {
	return &ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedBy.String(),
		Status:      c.Status,
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:          m.ID,
		UserID:      m.UserID.String(),
		DisplayName: m.DisplayName(),
		AvatarURL:   m.AvatarURL,
		Role:        m.Role,
		Status:      m.Status,
		JoinedAt:    m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
