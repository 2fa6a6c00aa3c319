package flag

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

// fakeStore keeps flags in a map keyed per target table, doubling as the
// ownership resolver for both target kinds.
type fakeStore struct {
	clubOwners  map[int64]uuid.UUID
	eventOwners map[int64]uuid.UUID
	flags       map[string]*Flag
	nextID      int64
}

func newFakeStore(clubOwners, eventOwners map[int64]uuid.UUID) *fakeStore {
	return &fakeStore{
		clubOwners:  clubOwners,
		eventOwners: eventOwners,
		flags:       make(map[string]*Flag),
	}
}

func flagKey(t TargetType, id int64) string {
	return fmt.Sprintf("%s/%d", t, id)
}

func (f *fakeStore) ClubOwner(_ context.Context, clubID int64) (uuid.UUID, error) {
	owner, ok := f.clubOwners[clubID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: club %d", authz.ErrTargetNotFound, clubID)
	}
	return owner, nil
}

func (f *fakeStore) EventOwner(_ context.Context, eventID int64) (uuid.UUID, error) {
	owner, ok := f.eventOwners[eventID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: event %d", authz.ErrTargetNotFound, eventID)
	}
	return owner, nil
}

func (f *fakeStore) Insert(_ context.Context, reporterID uuid.UUID, req *CreateFlagRequest) (*Flag, error) {
	for _, existing := range f.flags {
		if existing.TargetType == req.TargetType && existing.TargetID == req.TargetID && existing.ReporterID == reporterID {
			return nil, ErrAlreadyFlagged
		}
	}
	f.nextID++
	fl := &Flag{
		ID:         f.nextID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ReporterID: reporterID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	f.flags[flagKey(req.TargetType, fl.ID)] = fl
	return fl, nil
}

func (f *fakeStore) GetByID(_ context.Context, targetType TargetType, id int64) (*Flag, error) {
	return f.flags[flagKey(targetType, id)], nil
}

func (f *fakeStore) ListForTarget(_ context.Context, targetType TargetType, targetID int64) ([]*Flag, error) {
	var out []*Flag
	for _, fl := range f.flags {
		if fl.TargetType == targetType && fl.TargetID == targetID {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByReporter(_ context.Context, reporterID uuid.UUID) ([]*Flag, error) {
	var out []*Flag
	for _, fl := range f.flags {
		if fl.ReporterID == reporterID {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, targetType TargetType, id int64, status Status, reviewedBy uuid.UUID) (*Flag, error) {
	fl := f.flags[flagKey(targetType, id)]
	if fl == nil {
		return nil, nil
	}
	now := time.Now()
	fl.Status = status
	fl.ReviewedBy = &reviewedBy
	fl.ReviewedAt = &now
	return fl, nil
}

func newTestService(t *testing.T, clubOwners, eventOwners map[int64]uuid.UUID) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore(clubOwners, eventOwners)
	auth, err := authz.New(store)
	require.NoError(t, err)
	return NewService(store, auth), store
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	reporter := &authz.Principal{ID: uuid.New()}
	s, _ := newTestService(t, map[int64]uuid.UUID{1: owner}, map[int64]uuid.UUID{10: owner})

	t.Run("flag an event", func(t *testing.T) {
		fl, err := s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, fl.Status)
		assert.Equal(t, reporter.ID, fl.ReporterID)
	})

	t.Run("one flag per reporter per target", func(t *testing.T) {
		_, err := s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
		assert.ErrorIs(t, err, ErrAlreadyFlagged)
	})

	t.Run("flag a club", func(t *testing.T) {
		_, err := s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetClub, TargetID: 1, Reason: "misleading"})
		require.NoError(t, err)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := s.Create(ctx, nil, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
		assert.ErrorIs(t, err, authz.ErrUnauthenticated)
	})
}

func TestListForTarget_Visibility(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	owner := &authz.Principal{ID: ownerID}
	reporterA := &authz.Principal{ID: uuid.New()}
	reporterB := &authz.Principal{ID: uuid.New()}
	s, _ := newTestService(t, nil, map[int64]uuid.UUID{10: ownerID})

	_, err := s.Create(ctx, reporterA, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
	require.NoError(t, err)
	_, err = s.Create(ctx, reporterB, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "inappropriate"})
	require.NoError(t, err)

	t.Run("target owner sees every flag", func(t *testing.T) {
		flags, err := s.ListForTarget(ctx, owner, TargetEvent, 10)
		require.NoError(t, err)
		assert.Len(t, flags, 2)
	})

	t.Run("reporter sees only their own", func(t *testing.T) {
		flags, err := s.ListForTarget(ctx, reporterA, TargetEvent, 10)
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.Equal(t, reporterA.ID, flags[0].ReporterID)
	})

	t.Run("uninvolved caller sees nothing", func(t *testing.T) {
		flags, err := s.ListForTarget(ctx, &authz.Principal{ID: uuid.New()}, TargetEvent, 10)
		require.NoError(t, err)
		assert.Empty(t, flags)
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	reporter := &authz.Principal{ID: uuid.New()}
	s, _ := newTestService(t, map[int64]uuid.UUID{1: ownerID}, map[int64]uuid.UUID{10: ownerID})

	_, err := s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
	require.NoError(t, err)
	_, err = s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetClub, TargetID: 1, Reason: "other"})
	require.NoError(t, err)

	flags, err := s.ListMine(ctx, reporter)
	require.NoError(t, err)
	assert.Len(t, flags, 2)

	flags, err = s.ListMine(ctx, &authz.Principal{ID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	owner := &authz.Principal{ID: ownerID}
	reporter := &authz.Principal{ID: uuid.New()}
	s, _ := newTestService(t, nil, map[int64]uuid.UUID{10: ownerID})

	fl, err := s.Create(ctx, reporter, &CreateFlagRequest{TargetType: TargetEvent, TargetID: 10, Reason: "spam"})
	require.NoError(t, err)

	t.Run("reporter may not review their own flag", func(t *testing.T) {
		_, err := s.Review(ctx, reporter, TargetEvent, fl.ID, &UpdateFlagRequest{Status: StatusDismissed})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("target owner resolves the flag", func(t *testing.T) {
		reviewed, err := s.Review(ctx, owner, TargetEvent, fl.ID, &UpdateFlagRequest{Status: StatusResolved})
		require.NoError(t, err)
		assert.Equal(t, StatusResolved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewedBy)
		assert.Equal(t, owner.ID, *reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := s.Review(ctx, owner, TargetEvent, 404, &UpdateFlagRequest{Status: StatusResolved})
		assert.ErrorIs(t, err, ErrFlagNotFound)
	})
}
