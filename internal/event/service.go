package event

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
)

// Common errors
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, createdBy uuid.UUID, req *CreateEventRequest) (*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Event, int, error)
	Update(ctx context.Context, id int64, req *UpdateEventRequest) (*Event, error)
	Delete(ctx context.Context, id int64) error

	InsertRegistration(ctx context.Context, eventID int64, userID uuid.UUID) (*Registration, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]*Registration, error)
	DeleteRegistration(ctx context.Context, eventID int64, userID uuid.UUID) error
}

// Service handles event business logic
type Service struct {
	store Store
	auth  *authz.Authorizer
}

// NewService creates a new event service
func NewService(store Store, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

// Create creates an event under a club. Only the club's owner may do this;
// the rule resolves ownership by querying clubs, so a missing club surfaces
// as not-found before any row is written.
func (s *Service) Create(ctx context.Context, principal *authz.Principal, req *CreateEventRequest) (*Event, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	err := s.auth.Authorize(ctx, principal, authz.TableEvents, authz.OpInsert, authz.Target{
		ClubID:  req.ClubID,
		OwnerID: principal.ID,
	})
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, principal.ID, req)
}

// GetByID retrieves an event by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// List retrieves the public event directory
func (s *Service) List(ctx context.Context, filter ListFilter, page, perPage int) ([]*Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.List(ctx, filter, perPage, offset)
}

// Update modifies an event, owner of the parent club only
func (s *Service) Update(ctx context.Context, principal *authz.Principal, id int64, req *UpdateEventRequest) (*Event, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrEventNotFound
	}

	err = s.auth.Authorize(ctx, principal, authz.TableEvents, authz.OpUpdate, authz.Target{ClubID: existing.ClubID})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The row vanished between the existence check and the update.
		return nil, ErrEventNotFound
	}
	return updated, nil
}

// Delete removes an event, owner of the parent club only
func (s *Service) Delete(ctx context.Context, principal *authz.Principal, id int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEventNotFound
	}

	err = s.auth.Authorize(ctx, principal, authz.TableEvents, authz.OpDelete, authz.Target{ClubID: existing.ClubID})
	if err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// Register registers the caller for an event
func (s *Service) Register(ctx context.Context, principal *authz.Principal, eventID int64) (*Registration, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	event, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	err = s.auth.Authorize(ctx, principal, authz.TableEventRegistrations, authz.OpInsert, authz.Target{
		EventID:   eventID,
		RowUserID: principal.ID,
	})
	if err != nil {
		return nil, err
	}

	return s.store.InsertRegistration(ctx, eventID, principal.ID)
}

// Unregister removes a registration: the registrant cancelling, or the event
// owner removing an attendee
func (s *Service) Unregister(ctx context.Context, principal *authz.Principal, eventID int64, userID uuid.UUID) error {
	err := s.auth.Authorize(ctx, principal, authz.TableEventRegistrations, authz.OpDelete, authz.Target{
		EventID:   eventID,
		RowUserID: userID,
	})
	if err != nil {
		return err
	}

	return s.store.DeleteRegistration(ctx, eventID, userID)
}

// ListRegistrations retrieves an event's attendees, event owner only
func (s *Service) ListRegistrations(ctx context.Context, principal *authz.Principal, eventID int64) ([]*Registration, error) {
	err := s.auth.Authorize(ctx, principal, authz.TableEventRegistrations, authz.OpSelect, authz.Target{EventID: eventID})
	if err != nil {
		return nil, err
	}

	return s.store.ListRegistrations(ctx, eventID)
}
