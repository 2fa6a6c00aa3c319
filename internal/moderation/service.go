package moderation

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
	"github.com/asu-connect/api/internal/club"
)

// Store is the persistence contract the service depends on
type Store interface {
	Insert(ctx context.Context, adminID uuid.UUID, action, targetType, targetID string, notes *string) (*LogEntry, error)
	List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error)
}

// ClubModerator is the slice of the club service the moderation flow needs
type ClubModerator interface {
	ListByStatus(ctx context.Context, principal *authz.Principal, status club.ClubStatus, page, perPage int) ([]*club.Club, int, error)
	SetStatus(ctx context.Context, principal *authz.Principal, id int64, status club.ClubStatus) (*club.Club, error)
}

// Service handles admin moderation: the club approval queue and the audit log
type Service struct {
	store Store
	clubs ClubModerator
	auth  *authz.Authorizer
}

// NewService creates a new moderation service
func NewService(store Store, clubs ClubModerator, auth *authz.Authorizer) *Service {
	return &Service{store: store, clubs: clubs, auth: auth}
}

// ClubQueue retrieves clubs awaiting an approval decision
func (s *Service) ClubQueue(ctx context.Context, principal *authz.Principal, status club.ClubStatus, page, perPage int) ([]*club.Club, int, error) {
	return s.clubs.ListByStatus(ctx, principal, status, page, perPage)
}

// DecideClub applies an admin's approve/reject decision to a club and appends
// an audit log entry. The decision and the log write are independent
// statements; the decision is authoritative.
func (s *Service) DecideClub(ctx context.Context, principal *authz.Principal, clubID int64, req *DecideClubRequest) (*club.Club, error) {
	decided, err := s.clubs.SetStatus(ctx, principal, clubID, req.Status)
	if err != nil {
		return nil, err
	}

	err = s.auth.Authorize(ctx, principal, authz.TableModerationLogs, authz.OpInsert, authz.Target{})
	if err != nil {
		return nil, err
	}

	action := ActionClubApproved
	if req.Status == club.ClubStatusRejected {
		action = ActionClubRejected
	}

	_, err = s.store.Insert(ctx, principal.ID, action, "club", strconv.FormatInt(clubID, 10), req.Notes)
	if err != nil {
		return nil, err
	}

	return decided, nil
}

// Logs retrieves the moderation audit log, admin only
func (s *Service) Logs(ctx context.Context, principal *authz.Principal, page, perPage int) ([]*LogEntry, int, error) {
	err := s.auth.Authorize(ctx, principal, authz.TableModerationLogs, authz.OpSelect, authz.Target{})
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return s.store.List(ctx, perPage, (page-1)*perPage)
}
