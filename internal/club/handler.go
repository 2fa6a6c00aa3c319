package club

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

// Handler handles HTTP requests for club operations
type Handler struct {
	service *Service
}

// NewHandler creates a new club handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for club endpoints. Directory reads take the
// public middleware chain (principal attached when a token is present);
// writes require authentication.
func (h *Handler) Routes(public, protected chi.Middlewares) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(public...)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/members", h.ListMembers)
	})

	r.Group(func(r chi.Router) {
		r.Use(protected...)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/join", h.Join)
		r.Put("/{id}/members/{userId}", h.DecideMember)
		r.Delete("/{id}/members/{userId}", h.RemoveMember)
	})

	return r
}

// Create handles POST /clubs
// @Summary      Create a new club
// @Description  Create a club; the creator becomes its owner and is inserted as an approved admin member
// @Tags         clubs
// @Accept       json
// @Produce      json
// @Param        request body CreateClubRequest true "Club creation request"
// @Success      201 {object} response.APIResponse{data=ClubResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /clubs [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req CreateClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	club, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create club")
		return
	}

	response.JSON(w, http.StatusCreated, club.ToResponse())
}

// List handles GET /clubs
// @Summary      List clubs
// @Description  Public directory of approved clubs; ?mine=true lists the caller's clubs in any status
// @Tags         clubs
// @Produce      json
// @Param        mine query bool false "List only the caller's clubs"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ClubResponse}
// @Router       /clubs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	page, perPage := pagination(r)

	var (
		clubs []*Club
		total int
		err   error
	)
	if r.URL.Query().Get("mine") == "true" {
		clubs, total, err = h.service.ListMine(r.Context(), principal, page, perPage)
	} else {
		clubs, total, err = h.service.List(r.Context(), page, perPage)
	}
	if err != nil {
		h.writeError(w, err, "Failed to list clubs")
		return
	}

	clubResponses := make([]*ClubResponse, len(clubs))
	for i, club := range clubs {
		clubResponses[i] = club.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, clubResponses, meta(page, perPage, total))
}

// GetByID handles GET /clubs/{id}
// @Summary      Get club by ID
// @Tags         clubs
// @Produce      json
// @Param        id path int true "Club ID"
// @Success      200 {object} response.APIResponse{data=ClubResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /clubs/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	club, err := h.service.GetByID(r.Context(), principal, id)
	if err != nil {
		h.writeError(w, err, "Failed to get club")
		return
	}

	response.JSON(w, http.StatusOK, club.ToResponse())
}

// Update handles PUT /clubs/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	var req UpdateClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	club, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update club")
		return
	}

	response.JSON(w, http.StatusOK, club.ToResponse())
}

// Delete handles DELETE /clubs/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.writeError(w, err, "Failed to delete club")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Club deleted successfully"})
}

// Join handles POST /clubs/{id}/join
// @Summary      Request to join a club
// @Description  Files a pending membership request for the caller
// @Tags         clubs
// @Produce      json
// @Param        id path int true "Club ID"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /clubs/{id}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	member, err := h.service.Join(r.Context(), principal, id)
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			response.Conflict(w, "You have already requested to join this club")
			return
		}
		h.writeError(w, err, "Failed to join club")
		return
	}

	response.JSON(w, http.StatusCreated, member.ToResponse())
}

// ListMembers handles GET /clubs/{id}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	members, err := h.service.ListMembers(r.Context(), principal, id)
	if err != nil {
		h.writeError(w, err, "Failed to list members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// DecideMember handles PUT /clubs/{id}/members/{userId}
func (h *Handler) DecideMember(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	member, err := h.service.DecideMember(r.Context(), principal, id, userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update member")
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// RemoveMember handles DELETE /clubs/{id}/members/{userId}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := clubID(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	if err := h.service.RemoveMember(r.Context(), principal, id, userID); err != nil {
		h.writeError(w, err, "Failed to remove member")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

// writeError maps service errors to the response taxonomy
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, authz.ErrTargetNotFound), errors.Is(err, ErrClubNotFound), errors.Is(err, ErrMemberNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyMember):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrClubNotApproved), errors.Is(err, ErrNotPendingRequest), errors.Is(err, ErrOwnerCannotBeRemoved):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func clubID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid club ID")
		return 0, false
	}
	return id, true
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

func meta(page, perPage, total int) *response.Meta {
	return &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
