package profile

// UpdateProfileRequest represents the request body for updating a profile.
// is_admin is deliberately absent: it is never client-writable.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ProfileResponse represents the response for a single profile
type ProfileResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt string  `json:"created_at"`
}

// ToResponse converts a Profile model to a ProfileResponse DTO
func (p *Profile) ToResponse() *ProfileResponse {
	return &ProfileResponse{
		UserID:    p.UserID.String(),
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		IsAdmin:   p.IsAdmin,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// Validate checks field constraints and returns per-field messages
func (r *UpdateProfileRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.FullName != nil && (len(*r.FullName) < 1 || len(*r.FullName) > 100) {
		fields["full_name"] = "must be between 1 and 100 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
