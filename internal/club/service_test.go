package club

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asu-connect/api/internal/authz"
)

// fakeStore keeps clubs and membership rows in maps. It doubles as the
// authorization resolver so ownership checks see the same data the service
// mutates.
type fakeStore struct {
	clubs      map[int64]*Club
	members    map[string]*Member
	nextClub   int64
	nextMember int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clubs:   make(map[int64]*Club),
		members: make(map[string]*Member),
	}
}

func memberKey(clubID int64, userID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", clubID, userID)
}

func (f *fakeStore) ClubOwner(_ context.Context, clubID int64) (uuid.UUID, error) {
	c, ok := f.clubs[clubID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: club %d", authz.ErrTargetNotFound, clubID)
	}
	return c.CreatedBy, nil
}

func (f *fakeStore) EventOwner(_ context.Context, eventID int64) (uuid.UUID, error) {
	return uuid.Nil, fmt.Errorf("%w: event %d", authz.ErrTargetNotFound, eventID)
}

func (f *fakeStore) Create(_ context.Context, createdBy uuid.UUID, req *CreateClubRequest) (*Club, error) {
	f.nextClub++
	c := &Club{
		ID:          f.nextClub,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
		Status:      ClubStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.clubs[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Club, error) {
	return f.clubs[id], nil
}

func (f *fakeStore) List(_ context.Context, status ClubStatus, limit, offset int) ([]*Club, int, error) {
	var out []*Club
	for _, c := range f.clubs {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Club, int, error) {
	var out []*Club
	for _, m := range f.members {
		if m.UserID == userID {
			out = append(out, f.clubs[m.ClubID])
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, id int64, req *UpdateClubRequest) (*Club, error) {
	c := f.clubs[id]
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	return c, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status ClubStatus) (*Club, error) {
	c, ok := f.clubs[id]
	if !ok {
		return nil, nil
	}
	c.Status = status
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.clubs, id)
	return nil
}

func (f *fakeStore) InsertMember(_ context.Context, clubID int64, userID uuid.UUID, role MemberRole, status MemberStatus) (*Member, error) {
	key := memberKey(clubID, userID)
	if _, ok := f.members[key]; ok {
		return nil, ErrAlreadyMember
	}
	f.nextMember++
	m := &Member{
		ID:       f.nextMember,
		ClubID:   clubID,
		UserID:   userID,
		Role:     role,
		Status:   status,
		JoinedAt: time.Now(),
	}
	f.members[key] = m
	return m, nil
}

func (f *fakeStore) GetMember(_ context.Context, clubID int64, userID uuid.UUID) (*Member, error) {
	return f.members[memberKey(clubID, userID)], nil
}

func (f *fakeStore) ListMembers(_ context.Context, clubID int64) ([]*Member, error) {
	var out []*Member
	for _, m := range f.members {
		if m.ClubID == clubID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMemberStatus(_ context.Context, clubID int64, userID uuid.UUID, status MemberStatus) (*Member, error) {
	m := f.members[memberKey(clubID, userID)]
	if m == nil {
		return nil, nil
	}
	m.Status = status
	return m, nil
}

func (f *fakeStore) ResetMemberToPending(_ context.Context, clubID int64, userID uuid.UUID) (*Member, error) {
	m := f.members[memberKey(clubID, userID)]
	if m == nil || m.Status != MemberStatusRejected {
		return nil, nil
	}
	m.Status = MemberStatusPending
	return m, nil
}

func (f *fakeStore) RemoveMember(_ context.Context, clubID int64, userID uuid.UUID) error {
	delete(f.members, memberKey(clubID, userID))
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	auth, err := authz.New(store)
	require.NoError(t, err)
	return NewService(store, auth), store
}

func approvedClub(t *testing.T, s *Service, store *fakeStore, owner *authz.Principal) *Club {
	t.Helper()
	c, err := s.Create(context.Background(), owner, &CreateClubRequest{Name: "Robotics Club"})
	require.NoError(t, err)
	c, err = store.UpdateStatus(context.Background(), c.ID, ClubStatusApproved)
	require.NoError(t, err)
	return c
}

func TestCreate_InsertsOwnerMembership(t *testing.T) {
	s, store := newTestService(t)
	owner := &authz.Principal{ID: uuid.New()}

	c, err := s.Create(context.Background(), owner, &CreateClubRequest{Name: "Chess Club"})
	require.NoError(t, err)
	assert.Equal(t, ClubStatusPending, c.Status)
	assert.Equal(t, owner.ID, c.CreatedBy)

	m, err := store.GetMember(context.Background(), c.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, MemberRoleAdmin, m.Role)
	assert.Equal(t, MemberStatusApproved, m.Status)
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Create(context.Background(), nil, &CreateClubRequest{Name: "Chess Club"})

	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestGetByID_HidesUnapprovedClubs(t *testing.T) {
	s, _ := newTestService(t)
	owner := &authz.Principal{ID: uuid.New()}

	c, err := s.Create(context.Background(), owner, &CreateClubRequest{Name: "Chess Club"})
	require.NoError(t, err)

	t.Run("stranger sees not found", func(t *testing.T) {
		_, err := s.GetByID(context.Background(), &authz.Principal{ID: uuid.New()}, c.ID)
		assert.ErrorIs(t, err, ErrClubNotFound)
	})

	t.Run("anonymous sees not found", func(t *testing.T) {
		_, err := s.GetByID(context.Background(), nil, c.ID)
		assert.ErrorIs(t, err, ErrClubNotFound)
	})

	t.Run("owner sees it", func(t *testing.T) {
		got, err := s.GetByID(context.Background(), owner, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	})

	t.Run("platform admin sees it", func(t *testing.T) {
		got, err := s.GetByID(context.Background(), &authz.Principal{ID: uuid.New(), IsAdmin: true}, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	})
}

// vanishingStore drops the row between the service's existence check and the
// update, the way a concurrent delete would.
type vanishingStore struct {
	*fakeStore
}

func (v *vanishingStore) Update(_ context.Context, _ int64, _ *UpdateClubRequest) (*Club, error) {
	return nil, nil
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner renames their club", func(t *testing.T) {
		s, _ := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c, err := s.Create(ctx, owner, &CreateClubRequest{Name: "Chess Club"})
		require.NoError(t, err)

		name := "Chess and Go Club"
		updated, err := s.Update(ctx, owner, c.ID, &UpdateClubRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, name, updated.Name)
	})

	t.Run("platform admin may not edit club content", func(t *testing.T) {
		s, _ := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c, err := s.Create(ctx, owner, &CreateClubRequest{Name: "Chess Club"})
		require.NoError(t, err)

		name := "Renamed"
		_, err = s.Update(ctx, &authz.Principal{ID: uuid.New(), IsAdmin: true}, c.ID, &UpdateClubRequest{Name: &name})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("row deleted concurrently surfaces as not found", func(t *testing.T) {
		store := newFakeStore()
		auth, err := authz.New(store)
		require.NoError(t, err)
		s := NewService(&vanishingStore{store}, auth)

		owner := &authz.Principal{ID: uuid.New()}
		c, err := s.Create(ctx, owner, &CreateClubRequest{Name: "Chess Club"})
		require.NoError(t, err)

		name := "Renamed"
		_, err = s.Update(ctx, owner, c.ID, &UpdateClubRequest{Name: &name})
		assert.ErrorIs(t, err, ErrClubNotFound)
	})
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh request starts pending", func(t *testing.T) {
		s, store := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c := approvedClub(t, s, store, owner)

		joiner := &authz.Principal{ID: uuid.New()}
		m, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)
		assert.Equal(t, MemberStatusPending, m.Status)
		assert.Equal(t, MemberRoleMember, m.Role)
	})

	t.Run("repeated request conflicts", func(t *testing.T) {
		s, store := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c := approvedClub(t, s, store, owner)

		joiner := &authz.Principal{ID: uuid.New()}
		_, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)

		_, err = s.Join(ctx, joiner, c.ID)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("rejected request resets to pending", func(t *testing.T) {
		s, store := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c := approvedClub(t, s, store, owner)

		joiner := &authz.Principal{ID: uuid.New()}
		_, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)

		_, err = s.DecideMember(ctx, owner, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusRejected})
		require.NoError(t, err)

		m, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)
		assert.Equal(t, MemberStatusPending, m.Status)
	})

	t.Run("unapproved club does not accept members", func(t *testing.T) {
		s, _ := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c, err := s.Create(ctx, owner, &CreateClubRequest{Name: "Chess Club"})
		require.NoError(t, err)

		_, err = s.Join(ctx, &authz.Principal{ID: uuid.New()}, c.ID)
		assert.ErrorIs(t, err, ErrClubNotApproved)
	})

	t.Run("unknown club", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.Join(ctx, &authz.Principal{ID: uuid.New()}, 404)
		assert.ErrorIs(t, err, ErrClubNotFound)
	})
}

func TestDecideMember(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *fakeStore, *authz.Principal, *authz.Principal, *Club) {
		s, store := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c := approvedClub(t, s, store, owner)
		joiner := &authz.Principal{ID: uuid.New()}
		_, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)
		return s, store, owner, joiner, c
	}

	t.Run("owner approves a pending request", func(t *testing.T) {
		s, _, owner, joiner, c := setup(t)

		m, err := s.DecideMember(ctx, owner, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusApproved})
		require.NoError(t, err)
		assert.Equal(t, MemberStatusApproved, m.Status)
	})

	t.Run("non-owner may not decide", func(t *testing.T) {
		s, _, _, joiner, c := setup(t)

		_, err := s.DecideMember(ctx, &authz.Principal{ID: uuid.New()}, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusApproved})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("already decided request is rejected", func(t *testing.T) {
		s, _, owner, joiner, c := setup(t)

		_, err := s.DecideMember(ctx, owner, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusApproved})
		require.NoError(t, err)

		_, err = s.DecideMember(ctx, owner, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusRejected})
		assert.ErrorIs(t, err, ErrNotPendingRequest)
	})

	t.Run("unknown member", func(t *testing.T) {
		s, _, owner, _, c := setup(t)

		_, err := s.DecideMember(ctx, owner, c.ID, uuid.New(), &UpdateMemberRequest{Status: MemberStatusApproved})
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *fakeStore, *authz.Principal, *authz.Principal, *Club) {
		s, store := newTestService(t)
		owner := &authz.Principal{ID: uuid.New()}
		c := approvedClub(t, s, store, owner)
		joiner := &authz.Principal{ID: uuid.New()}
		_, err := s.Join(ctx, joiner, c.ID)
		require.NoError(t, err)
		_, err = s.DecideMember(ctx, owner, c.ID, joiner.ID, &UpdateMemberRequest{Status: MemberStatusApproved})
		require.NoError(t, err)
		return s, store, owner, joiner, c
	}

	t.Run("member leaves their club", func(t *testing.T) {
		s, store, _, joiner, c := setup(t)

		require.NoError(t, s.RemoveMember(ctx, joiner, c.ID, joiner.ID))

		m, err := store.GetMember(ctx, c.ID, joiner.ID)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("owner removes a member", func(t *testing.T) {
		s, _, owner, joiner, c := setup(t)

		require.NoError(t, s.RemoveMember(ctx, owner, c.ID, joiner.ID))
	})

	t.Run("stranger may not remove anyone", func(t *testing.T) {
		s, _, _, joiner, c := setup(t)

		err := s.RemoveMember(ctx, &authz.Principal{ID: uuid.New()}, c.ID, joiner.ID)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("owner row is protected", func(t *testing.T) {
		s, _, owner, _, c := setup(t)

		err := s.RemoveMember(ctx, owner, c.ID, owner.ID)
		assert.ErrorIs(t, err, ErrOwnerCannotBeRemoved)
	})
}

func TestListMembers_Visibility(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t)
	owner := &authz.Principal{ID: uuid.New()}
	c := approvedClub(t, s, store, owner)

	pendingUser := &authz.Principal{ID: uuid.New()}
	_, err := s.Join(ctx, pendingUser, c.ID)
	require.NoError(t, err)

	approvedUser := &authz.Principal{ID: uuid.New()}
	_, err = s.Join(ctx, approvedUser, c.ID)
	require.NoError(t, err)
	_, err = s.DecideMember(ctx, owner, c.ID, approvedUser.ID, &UpdateMemberRequest{Status: MemberStatusApproved})
	require.NoError(t, err)

	statuses := func(members []*Member) map[uuid.UUID]MemberStatus {
		out := make(map[uuid.UUID]MemberStatus, len(members))
		for _, m := range members {
			out[m.UserID] = m.Status
		}
		return out
	}

	t.Run("owner sees every row", func(t *testing.T) {
		members, err := s.ListMembers(ctx, owner, c.ID)
		require.NoError(t, err)
		assert.Len(t, members, 3)
	})

	t.Run("anonymous sees approved rows only", func(t *testing.T) {
		members, err := s.ListMembers(ctx, nil, c.ID)
		require.NoError(t, err)
		got := statuses(members)
		assert.Len(t, got, 2)
		assert.NotContains(t, got, pendingUser.ID)
	})

	t.Run("pending caller additionally sees their own row", func(t *testing.T) {
		members, err := s.ListMembers(ctx, pendingUser, c.ID)
		require.NoError(t, err)
		got := statuses(members)
		assert.Len(t, got, 3)
		assert.Equal(t, MemberStatusPending, got[pendingUser.ID])
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	owner := &authz.Principal{ID: uuid.New()}
	c, err := s.Create(ctx, owner, &CreateClubRequest{Name: "Chess Club"})
	require.NoError(t, err)

	t.Run("non-admin is denied, owner included", func(t *testing.T) {
		_, err := s.SetStatus(ctx, owner, c.ID, ClubStatusApproved)
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("admin approves", func(t *testing.T) {
		admin := &authz.Principal{ID: uuid.New(), IsAdmin: true}
		got, err := s.SetStatus(ctx, admin, c.ID, ClubStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, ClubStatusApproved, got.Status)
	})

	t.Run("unknown club", func(t *testing.T) {
		admin := &authz.Principal{ID: uuid.New(), IsAdmin: true}
		_, err := s.SetStatus(ctx, admin, 404, ClubStatusApproved)
		assert.ErrorIs(t, err, ErrClubNotFound)
	})
}

func TestListByStatus_AdminOnly(t *testing.T) {
	s, _ := newTestService(t)

	_, _, err := s.ListByStatus(context.Background(), &authz.Principal{ID: uuid.New()}, ClubStatusPending, 1, 20)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, _, err = s.ListByStatus(context.Background(), nil, ClubStatusPending, 1, 20)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		limit, offset int
	}{
		{"defaults", 0, 0, 20, 0},
		{"explicit", 2, 10, 10, 10},
		{"per page over cap", 1, 500, 20, 0},
		{"negative page", -3, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := clampPage(tt.page, tt.perPage)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
