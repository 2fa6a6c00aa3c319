package event

import "time"

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	ClubID      int64     `json:"club_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=150"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,max=200"`
	Category    *string   `json:"category,omitempty"`
	IsFree      bool      `json:"is_free"`
	Price       *float64  `json:"price,omitempty"`
}

// UpdateEventRequest represents the request to update an event. IsFree and
// Price travel together: providing is_free rewrites the pricing pair.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=150"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Category    *string    `json:"category,omitempty"`
	IsFree      *bool      `json:"is_free,omitempty"`
	Price       *float64   `json:"price,omitempty"`
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID          int64    `json:"id"`
	ClubID      int64    `json:"club_id"`
	CreatedBy   string   `json:"created_by"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Category    *string  `json:"category,omitempty"`
	IsFree      bool     `json:"is_free"`
	Price       *float64 `json:"price,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// RegistrationResponse represents a registration in an attendee listing
type RegistrationResponse struct {
	ID           int64   `json:"id"`
	EventID      int64   `json:"event_id"`
	UserID       string  `json:"user_id"`
	DisplayName  string  `json:"display_name"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	RegisteredAt string  `json:"registered_at"`
}

// Validate checks field constraints and returns per-field messages
func (r *CreateEventRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.ClubID == 0 {
		fields["club_id"] = "is required"
	}
	if r.Title == "" {
		fields["title"] = "is required"
	} else if len(r.Title) > 150 {
		fields["title"] = "must be at most 150 characters"
	}
	if r.Date.IsZero() {
		fields["date"] = "is required"
	}
	if r.Location == "" {
		fields["location"] = "is required"
	} else if len(r.Location) > 200 {
		fields["location"] = "must be at most 200 characters"
	}
	if r.Category != nil && !ValidCategory(*r.Category) {
		fields["category"] = "must be one of Academic, Social, Sports, Arts, Career, Community Service, Other"
	}
	if msg := validatePricing(r.IsFree, r.Price); msg != "" {
		fields["price"] = msg
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate checks field constraints and returns per-field messages
func (r *UpdateEventRequest) Validate() map[string]string {
	fields := make(map[string]string)
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 150) {
		fields["title"] = "must be between 1 and 150 characters"
	}
	if r.Location != nil && (*r.Location == "" || len(*r.Location) > 200) {
		fields["location"] = "must be between 1 and 200 characters"
	}
	if r.Category != nil && !ValidCategory(*r.Category) {
		fields["category"] = "must be one of Academic, Social, Sports, Arts, Career, Community Service, Other"
	}
	if r.IsFree != nil {
		if msg := validatePricing(*r.IsFree, r.Price); msg != "" {
			fields["price"] = msg
		}
	} else if r.Price != nil {
		fields["price"] = "cannot be changed without is_free"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// validatePricing enforces the pricing invariant: a free event has no price,
// a paid event has a positive one.
func validatePricing(isFree bool, price *float64) string {
	if isFree && price != nil {
		return "must be empty for a free event"
	}
	if !isFree {
		if price == nil {
			return "is required for a paid event"
		}
		if *price <= 0 {
			return "must be greater than zero"
		}
	}
	return ""
}

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		ClubID:      e.ClubID,
		CreatedBy:   e.CreatedBy.String(),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.Format(time.RFC3339),
		Location:    e.Location,
		Category:    e.Category,
		IsFree:      e.IsFree,
		Price:       e.Price,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Registration model to a RegistrationResponse DTO
func (r *Registration) ToResponse() *RegistrationResponse {
	return &RegistrationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		UserID:       r.UserID.String(),
		DisplayName:  r.DisplayName(),
		AvatarURL:    r.AvatarURL,
		RegisteredAt: r.RegisteredAt.Format("2006-01-02T15:04:05Z"),
	}
}
