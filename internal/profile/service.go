package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
)

// Common errors
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Store is the persistence contract the service depends on
type Store interface {
	Ensure(ctx context.Context, userID uuid.UUID, email string) (*Profile, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error)
}

// Service handles profile business logic
type Service struct {
	store Store
	auth  *authz.Authorizer
}

// NewService creates a new profile service
func NewService(store Store, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

// Ensure provisions the profile row for a principal if missing and returns it
func (s *Service) Ensure(ctx context.Context, userID uuid.UUID, email string) (*Profile, error) {
	return s.store.Ensure(ctx, userID, email)
}

// GetByID retrieves a profile by user ID
func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Update modifies a profile's display fields, allowed for the profile's own
// principal or an admin
func (s *Service) Update(ctx context.Context, principal *authz.Principal, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	err := s.auth.Authorize(ctx, principal, authz.TableProfiles, authz.OpUpdate, authz.Target{RowUserID: userID})
	if err != nil {
		return nil, err
	}

	profile, err := s.store.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
