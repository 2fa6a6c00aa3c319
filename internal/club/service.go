package club

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/asu-connect/api/internal/authz"
)

// Common errors
var (
	ErrClubNotFound         = errors.New("club not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrAlreadyMember        = errors.New("membership already requested or granted")
	ErrClubNotApproved      = errors.New("club is not accepting members yet")
	ErrNotPendingRequest    = errors.New("only pending membership requests can be approved or rejected")
	ErrOwnerCannotBeRemoved = errors.New("the club owner cannot be removed from their club")
)

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, createdBy uuid.UUID, req *CreateClubRequest) (*Club, error)
	GetByID(ctx context.Context, id int64) (*Club, error)
	List(ctx context.Context, status ClubStatus, limit, offset int) ([]*Club, int, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Club, int, error)
	Update(ctx context.Context, id int64, req *UpdateClubRequest) (*Club, error)
	UpdateStatus(ctx context.Context, id int64, status ClubStatus) (*Club, error)
	Delete(ctx context.Context, id int64) error

	InsertMember(ctx context.Context, clubID int64, userID uuid.UUID, role MemberRole, status MemberStatus) (*Member, error)
	GetMember(ctx context.Context, clubID int64, userID uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, clubID int64) ([]*Member, error)
	UpdateMemberStatus(ctx context.Context, clubID int64, userID uuid.UUID, status MemberStatus) (*Member, error)
	ResetMemberToPending(ctx context.Context, clubID int64, userID uuid.UUID) (*Member, error)
	RemoveMember(ctx context.Context, clubID int64, userID uuid.UUID) error
}

// Service handles club business logic
type Service struct {
	store Store
	auth  *authz.Authorizer
}

// NewService creates a new club service
func NewService(store Store, auth *authz.Authorizer) *Service {
	return &Service{store: store, auth: auth}
}

// Create creates a club and inserts the creator's own membership directly as
// an approved admin. The owner row must never start out pending: no one else
// exists who could approve it. The two inserts are independent statements;
// a crash in between leaves a club without its owner row.
func (s *Service) Create(ctx context.Context, principal *authz.Principal, req *CreateClubRequest) (*Club, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	err := s.auth.Authorize(ctx, principal, authz.TableClubs, authz.OpInsert, authz.Target{OwnerID: principal.ID})
	if err != nil {
		return nil, err
	}

	club, err := s.store.Create(ctx, principal.ID, req)
	if err != nil {
		return nil, err
	}

	_, err = s.store.InsertMember(ctx, club.ID, principal.ID, MemberRoleAdmin, MemberStatusApproved)
	if err != nil {
		return nil, err
	}

	return club, nil
}

// GetByID retrieves a club. Clubs that are not yet approved are visible only
// to their owner and platform admins.
func (s *Service) GetByID(ctx context.Context, principal *authz.Principal, id int64) (*Club, error) {
	club, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	if club.Status != ClubStatusApproved && !canSeeUnapproved(principal, club) {
		return nil, ErrClubNotFound
	}

	return club, nil
}

func canSeeUnapproved(principal *authz.Principal, club *Club) bool {
	return principal != nil && (principal.ID == club.CreatedBy || principal.IsAdmin)
}

// List retrieves the public directory of approved clubs
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Club, int, error) {
	limit, offset := clampPage(page, perPage)
	return s.store.List(ctx, ClubStatusApproved, limit, offset)
}

// ListMine retrieves the caller's clubs, any approval or membership status
func (s *Service) ListMine(ctx context.Context, principal *authz.Principal, page, perPage int) ([]*Club, int, error) {
	if principal == nil {
		return nil, 0, authz.ErrUnauthenticated
	}

	limit, offset := clampPage(page, perPage)
	return s.store.ListByUserID(ctx, principal.ID, limit, offset)
}

// Update modifies a club's name and description, owner only
func (s *Service) Update(ctx context.Context, principal *authz.Principal, id int64, req *UpdateClubRequest) (*Club, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrClubNotFound
	}

	err = s.auth.Authorize(ctx, principal, authz.TableClubs, authz.OpUpdate, authz.Target{OwnerID: existing.CreatedBy})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The row vanished between the existence check and the update.
		return nil, ErrClubNotFound
	}
	return updated, nil
}

// Delete removes a club and everything cascading from it, owner only
func (s *Service) Delete(ctx context.Context, principal *authz.Principal, id int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrClubNotFound
	}

	err = s.auth.Authorize(ctx, principal, authz.TableClubs, authz.OpDelete, authz.Target{OwnerID: existing.CreatedBy})
	if err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// Join files a membership request for the caller. A fresh request starts
// pending; a previously rejected request is reset to pending; anything else
// on file is a conflict so the client can say "already requested".
func (s *Service) Join(ctx context.Context, principal *authz.Principal, clubID int64) (*Member, error) {
	if principal == nil {
		return nil, authz.ErrUnauthenticated
	}

	club, err := s.store.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, ErrClubNotFound
	}
	if club.Status != ClubStatusApproved {
		return nil, ErrClubNotApproved
	}

	err = s.auth.Authorize(ctx, principal, authz.TableClubMembers, authz.OpInsert, authz.Target{
		ClubID:    clubID,
		RowUserID: principal.ID,
		Role:      string(MemberRoleMember),
		Status:    string(MemberStatusPending),
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetMember(ctx, clubID, principal.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil:
		return s.store.InsertMember(ctx, clubID, principal.ID, MemberRoleMember, MemberStatusPending)
	case existing.Status == MemberStatusRejected:
		return s.store.ResetMemberToPending(ctx, clubID, principal.ID)
	default:
		return nil, ErrAlreadyMember
	}
}

// ListMembers retrieves a club's members with row-level visibility: everyone
// sees approved rows, a caller additionally sees their own row in any status,
// and the owner sees everything.
func (s *Service) ListMembers(ctx context.Context, principal *authz.Principal, clubID int64) ([]*Member, error) {
	club, err := s.store.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, ErrClubNotFound
	}

	members, err := s.store.ListMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if principal != nil && principal.ID == club.CreatedBy {
		return members, nil
	}

	visible := make([]*Member, 0, len(members))
	for _, m := range members {
		if m.Status == MemberStatusApproved || (principal != nil && m.UserID == principal.ID) {
			visible = append(visible, m)
		}
	}

	return visible, nil
}

// DecideMember applies the owner's approve/reject decision to a pending
// membership request
func (s *Service) DecideMember(ctx context.Context, principal *authz.Principal, clubID int64, userID uuid.UUID, req *UpdateMemberRequest) (*Member, error) {
	err := s.auth.Authorize(ctx, principal, authz.TableClubMembers, authz.OpUpdate, authz.Target{ClubID: clubID, RowUserID: userID})
	if err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != MemberStatusPending {
		return nil, ErrNotPendingRequest
	}

	return s.store.UpdateMemberStatus(ctx, clubID, userID, req.Status)
}

// RemoveMember deletes a membership row: a member leaving, or the owner
// removing someone. The owner's own row only goes away with the club.
func (s *Service) RemoveMember(ctx context.Context, principal *authz.Principal, clubID int64, userID uuid.UUID) error {
	club, err := s.store.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if club == nil {
		return ErrClubNotFound
	}
	if userID == club.CreatedBy {
		return ErrOwnerCannotBeRemoved
	}

	err = s.auth.Authorize(ctx, principal, authz.TableClubMembers, authz.OpDelete, authz.Target{ClubID: clubID, RowUserID: userID})
	if err != nil {
		return err
	}

	return s.store.RemoveMember(ctx, clubID, userID)
}

// SetStatus applies an admin's approval decision to the club itself. Status
// changes go through the clubs moderate rule, so content edits stay
// owner-only while admins keep the approval path.
func (s *Service) SetStatus(ctx context.Context, principal *authz.Principal, id int64, status ClubStatus) (*Club, error) {
	err := s.auth.Authorize(ctx, principal, authz.TableClubs, authz.OpModerate, authz.Target{ClubID: id})
	if err != nil {
		return nil, err
	}

	club, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, ErrClubNotFound
	}
	return club, nil
}

// ListByStatus retrieves clubs in a given approval status, admin only
func (s *Service) ListByStatus(ctx context.Context, principal *authz.Principal, status ClubStatus, page, perPage int) ([]*Club, int, error) {
	if principal == nil {
		return nil, 0, authz.ErrUnauthenticated
	}
	if !principal.IsAdmin {
		return nil, 0, authz.ErrForbidden
	}

	limit, offset := clampPage(page, perPage)
	return s.store.List(ctx, status, limit, offset)
}

func clampPage(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return perPage, (page - 1) * perPage
}
