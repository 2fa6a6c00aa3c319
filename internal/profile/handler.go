package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/pkg/middleware"
	"github.com/asu-connect/api/pkg/response"
)

// Handler handles HTTP requests for profile operations
type Handler struct {
	service *Service
}

// NewHandler creates a new profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for profile endpoints
func (h *Handler) Routes(public, protected chi.Middlewares) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(public...)
		r.Get("/{id}", h.GetByID)
	})

	r.Group(func(r chi.Router) {
		r.Use(protected...)
		r.Put("/{id}", h.Update)
	})

	return r
}

// MeRoutes returns the routes for the authenticated principal's own profile
func (h *Handler) MeRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Me)
	r.Put("/", h.UpdateMe)

	return r
}

// GetByID handles GET /profiles/{id}
// @Summary      Get profile by ID
// @Description  Get a user's public profile
// @Tags         profiles
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /profiles/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, profile.ToResponse())
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetByID(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, profile.ToResponse())
}

// UpdateMe handles PUT /me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	h.update(w, r, principal.ID)
}

// Update handles PUT /profiles/{id} (self or admin)
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	h.update(w, r, id)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	principal := middleware.GetPrincipal(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	profile, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, authz.ErrForbidden):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrProfileNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to update profile")
		}
		return
	}

	response.JSON(w, http.StatusOK, profile.ToResponse())
}
