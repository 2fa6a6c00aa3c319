package moderation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/internal/club"
	"github.com/asu-connect/api/pkg/middleware"
	"github.com/asu-connect/api/pkg/response"
)

// Handler handles HTTP requests for admin moderation
type Handler struct {
	service *Service
}

// NewHandler creates a new moderation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for admin endpoints; all of them require
// authentication and the service layer requires the admin flag
func (h *Handler) Routes(protected chi.Middlewares) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(protected...)
		r.Get("/clubs", h.ClubQueue)
		r.Put("/clubs/{id}/status", h.DecideClub)
		r.Get("/logs", h.Logs)
	})

	return r
}

// ClubQueue handles GET /admin/clubs
// @Summary      List clubs by approval status
// @Description  Admin queue of clubs awaiting a decision
// @Tags         admin
// @Produce      json
// @Param        status query string false "Approval status" default(pending)
// @Success      200 {object} response.APIResponse{data=[]club.ClubResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /admin/clubs [get]
func (h *Handler) ClubQueue(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	page, perPage := pagination(r)

	status := club.ClubStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = club.ClubStatusPending
	}

	clubs, total, err := h.service.ClubQueue(r.Context(), principal, status, page, perPage)
	if err != nil {
		h.writeError(w, err, "Failed to list clubs")
		return
	}

	clubResponses := make([]*club.ClubResponse, len(clubs))
	for i, c := range clubs {
		clubResponses[i] = c.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, clubResponses, meta)
}

// DecideClub handles PUT /admin/clubs/{id}/status
func (h *Handler) DecideClub(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid club ID")
		return
	}

	var req DecideClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	decided, err := h.service.DecideClub(r.Context(), principal, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update club status")
		return
	}

	response.JSON(w, http.StatusOK, decided.ToResponse())
}

// Logs handles GET /admin/logs
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	page, perPage := pagination(r)

	entries, total, err := h.service.Logs(r.Context(), principal, page, perPage)
	if err != nil {
		h.writeError(w, err, "Failed to list moderation logs")
		return
	}

	logResponses := make([]*LogResponse, len(entries))
	for i, entry := range entries {
		logResponses[i] = entry.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, logResponses, meta)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, club.ErrClubNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func pagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return page, perPage
}
