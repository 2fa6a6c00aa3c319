package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey ContextKey = "principal"
)

// Authenticator validates Supabase-style HS256 access tokens. The auth
// provider signs tokens with the project JWT secret; the subject claim is the
// principal's UUID.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator for the given shared secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Require rejects requests without a valid bearer token with 401
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.principalFromRequest(r)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches a principal when a valid bearer token is present and
// lets the request through anonymously otherwise. Used on the public
// directory routes, where authenticated callers see their own pending rows.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.principalFromRequest(r)
		if err != nil {
			// A present-but-invalid token is rejected rather than silently
			// downgraded to anonymous.
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) principalFromRequest(r *http.Request) (*authz.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return a.parseToken(parts[1])
}

func (a *Authenticator) parseToken(tokenString string) (*authz.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a valid user ID")
	}

	principal := &authz.Principal{ID: id}
	if email, ok := claims["email"].(string); ok {
		principal.Email = email
	}

	return principal, nil
}

// GetPrincipal extracts the authenticated principal from the request context.
// Returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *authz.Principal {
	principal, _ := ctx.Value(PrincipalKey).(*authz.Principal)
	return principal
}
