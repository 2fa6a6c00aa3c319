package flag

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/pkg/middleware"
	"github.com/asu-connect/api/pkg/response"
)

// Handler handles HTTP requests for flag operations
type Handler struct {
	service *Service
}

// NewHandler creates a new flag handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for flag endpoints; all of them require
// authentication
func (h *Handler) Routes(protected chi.Middlewares) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(protected...)
		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Get("/{targetType}/{targetId}", h.ListForTarget)
		r.Put("/{targetType}/{id}/status", h.Review)
	})

	return r
}

// Create handles POST /flags
// @Summary      File a flag
// @Description  Report an event or a club; one flag per reporter per target
// @Tags         flags
// @Accept       json
// @Produce      json
// @Param        request body CreateFlagRequest true "Flag request"
// @Success      201 {object} response.APIResponse{data=FlagResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /flags [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req CreateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	flag, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, err, "Failed to file flag")
		return
	}

	response.JSON(w, http.StatusCreated, flag.ToResponse())
}

// ListMine handles GET /flags/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	flags, err := h.service.ListMine(r.Context(), principal)
	if err != nil {
		h.writeError(w, err, "Failed to list flags")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(flags))
}

// ListForTarget handles GET /flags/{targetType}/{targetId}
func (h *Handler) ListForTarget(w http.ResponseWriter, r *http.Request) {
	targetType := TargetType(chi.URLParam(r, "targetType"))
	if !targetType.Valid() {
		response.BadRequest(w, "Invalid target type")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "targetId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid target ID")
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	flags, err := h.service.ListForTarget(r.Context(), principal, targetType, targetID)
	if err != nil {
		h.writeError(w, err, "Failed to list flags")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(flags))
}

// Review handles PUT /flags/{targetType}/{id}/status
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	targetType := TargetType(chi.URLParam(r, "targetType"))
	if !targetType.Valid() {
		response.BadRequest(w, "Invalid target type")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid flag ID")
		return
	}

	var req UpdateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if fields := req.Validate(); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	principal := middleware.GetPrincipal(r.Context())

	flag, err := h.service.Review(r.Context(), principal, targetType, id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update flag")
		return
	}

	response.JSON(w, http.StatusOK, flag.ToResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, authz.ErrTargetNotFound), errors.Is(err, ErrFlagNotFound), errors.Is(err, ErrTargetMissing):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyFlagged):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func toResponses(flags []*Flag) []*FlagResponse {
	responses := make([]*FlagResponse, len(flags))
	for i, f := range flags {
		responses[i] = f.ToResponse()
	}
	return responses
}
