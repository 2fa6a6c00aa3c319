package profile

import (
	"net/http"

	"github.com/asu-connect/api/pkg/middleware"
	"github.com/asu-connect/api/pkg/response"
)

// EnsureProfile provisions the principal's profile row synchronously on every
// authenticated request. This replaces the implicit signup trigger: a failed
// insert surfaces as a 500 here instead of leaving requests to fail later
// against a missing row. It also loads the is_admin flag onto the principal,
// so admin checks never have to run inside an authorization rule.
func (s *Service) EnsureProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipal(r.Context())
		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		prof, err := s.Ensure(r.Context(), principal.ID, principal.Email)
		if err != nil {
			response.InternalError(w, "Failed to provision profile")
			return
		}

		principal.IsAdmin = prof.IsAdmin
		next.ServeHTTP(w, r)
	})
}
