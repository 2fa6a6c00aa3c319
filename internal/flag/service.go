package flag

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
)

// Common errors
var (
	ErrFlagNotFound   = errors.New("flag not found")
	ErrAlreadyFlagged = errors.New("you have already flagged this")
	ErrTargetMissing  = errors.New("flag target not found")
)

// Store is the persistence contract the service depends on
type Store interface {
	Insert(ctx context.Context, reporterID uuid.UUID, req *CreateFlagRequest) (*Flag, error)
	GetByID(ctx context.Context, targetType TargetType, id int64) (*Flag, error)
	ListForTarget(ctx context.Context, targetType TargetType, targetID int64) ([]*Flag, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Flag, error)
	UpdateStatus(ctx context.Context, targetType TargetType, id int64, status Status, reviewedBy uuid.UUID) (*Flag, error)
}

// Service handles flag business logic
type Service struct {
	store Store
	auth  *authz.Authorizer
}

// NewService creates a new flag service
func NewService(store Store, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

func authzTable(t TargetType) authz.Table {
	if t == TargetClub {
		return authz.TableClubFlags
	}
	return authz.TableEventFlags
}

func target(t TargetType, targetID int64, rowUserID uuid.UUID) authz.Target {
	tgt := authz.Target{RowUserID: rowUserID}
	if t == TargetClub {
		tgt.ClubID = targetID
	} else {
		tgt.EventID = targetID
	}
	return tgt
}

// Create files a flag by the caller against an event or club
func (s *Service) Create(ctx context.Context, principal *authz.Principal, req *CreateFlagRequest) (*Flag, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	err := s.auth.Authorize(ctx, principal, authzTable(req.TargetType), authz.OpInsert,
		target(req.TargetType, req.TargetID, principal.ID))
	if err != nil {
		return nil, err
	}

	return s.store.Insert(ctx, principal.ID, req)
}

// ListForTarget retrieves the flags on a target. The target's owner sees all
// of them; anyone else sees only the flags they filed themselves.
func (s *Service) ListForTarget(ctx context.Context, principal *authz.Principal, targetType TargetType, targetID int64) ([]*Flag, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	flags, err := s.store.ListForTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	err = s.auth.Authorize(ctx, principal, authzTable(targetType), authz.OpSelect,
		target(targetType, targetID, uuid.Nil))
	if err == nil {
		return flags, nil
	}
	if !errors.Is(err, authz.ErrForbidden) {
		return nil, err
	}

	own := make([]*Flag, 0, len(flags))
	for _, f := range flags {
		if f.ReporterID == principal.ID {
			own = append(own, f)
		}
	}
	return own, nil
}

// ListMine retrieves every flag the caller has filed
func (s *Service) ListMine(ctx context.Context, principal *authz.Principal) ([]*Flag, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}
	return s.store.ListByReporter(ctx, principal.ID)
}

// Review records the target owner's decision on a flag
func (s *Service) Review(ctx context.Context, principal *authz.Principal, targetType TargetType, id int64, req *UpdateFlagRequest) (*Flag, error) {
	flag, err := s.store.GetByID(ctx, targetType, id)
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, ErrFlagNotFound
	}

	err = s.auth.Authorize(ctx, principal, authzTable(targetType), authz.OpUpdate,
		target(targetType, flag.TargetID, uuid.Nil))
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, targetType, id, req.Status, principal.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrFlagNotFound
	}
	return updated, nil
}
