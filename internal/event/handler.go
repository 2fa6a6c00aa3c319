package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/pkg/middleware"
	"github.com/asu-connect/api/pkg/response"
)

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for event endpoints
func (h *Handler) Routes(public, protected chi.Middlewares) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(public...)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})

	r.Group(func(r chi.Router) {
		r.Use(protected...)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/registrations", h.Register)
		r.Get("/{id}/registrations", h.ListRegistrations)
		r.Delete("/{id}/registrations/{userId}", h.Unregister)
	})

	return r
}

// Create handles POST /events
// @Summary      Create a new event
// @Description  Create an event under a club the caller owns
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body CreateEventRequest true "Event creation request"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	event, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, event.ToResponse())
}

// List handles GET /events
// @Summary      List events
// @Description  Public directory of events held by approved clubs
// @Tags         events
// @Produce      json
// @Param        club_id query int false "Filter by club"
// @Param        category query string false "Filter by category"
// @Param        upcoming query bool false "Only future events"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	clubID, _ := strconv.ParseInt(r.URL.Query().Get("club_id"), 10, 64)
	filter := ListFilter{
		ClubID:   clubID,
		Category: r.URL.Query().Get("category"),
		Upcoming: r.URL.Query().Get("upcoming") == "true",
	}

	events, total, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}

	eventResponses := make([]*EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = event.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, eventResponses, meta)
}

// GetByID handles GET /events/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse())
}

// Update handles PUT /events/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	event, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, event.ToResponse())
}

// Delete handles DELETE /events/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.writeError(w, err, "Failed to delete event")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// Register handles POST /events/{id}/registrations
// @Summary      Register for an event
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      201 {object} response.APIResponse{data=RegistrationResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /events/{id}/registrations [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	reg, err := h.service.Register(r.Context(), principal, id)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			response.Conflict(w, "You are already registered for this event")
			return
		}
		h.writeError(w, err, "Failed to register")
		return
	}

	response.JSON(w, http.StatusCreated, reg.ToResponse())
}

// ListRegistrations handles GET /events/{id}/registrations
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	regs, err := h.service.ListRegistrations(r.Context(), principal, id)
	if err != nil {
		h.writeError(w, err, "Failed to list registrations")
		return
	}

	regResponses := make([]*RegistrationResponse, len(regs))
	for i, reg := range regs {
		regResponses[i] = reg.ToResponse()
	}

	response.JSON(w, http.StatusOK, regResponses)
}

// Unregister handles DELETE /events/{id}/registrations/{userId}
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	if err := h.service.Unregister(r.Context(), principal, id, userID); err != nil {
		h.writeError(w, err, "Failed to remove registration")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Registration removed successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, authz.ErrTargetNotFound), errors.Is(err, ErrEventNotFound), errors.Is(err, ErrRegistrationNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyRegistered):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return 0, false
	}
	return id, true
}
