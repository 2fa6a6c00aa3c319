package authz

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver serves ownership facts from fixed maps.
type fakeResolver struct {
	clubOwners  map[int64]uuid.UUID
	eventOwners map[int64]uuid.UUID
}

func (f *fakeResolver) ClubOwner(_ context.Context, clubID int64) (uuid.UUID, error) {
	owner, ok := f.clubOwners[clubID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: club %d", ErrTargetNotFound, clubID)
	}
	return owner, nil
}

func (f *fakeResolver) EventOwner(_ context.Context, eventID int64) (uuid.UUID, error) {
	owner, ok := f.eventOwners[eventID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: event %d", ErrTargetNotFound, eventID)
	}
	return owner, nil
}

func newTestAuthorizer(t *testing.T, res Resolver) *Authorizer {
	t.Helper()
	a, err := New(res)
	require.NoError(t, err)
	return a
}

func TestNew_DefaultRulesSatisfyRankDiscipline(t *testing.T) {
	a, err := New(&fakeResolver{})
	require.NoError(t, err)

	// The owner-gated mutations sit on the tables most at risk of an
	// equal-rank read; each must be registered, not silently dropped.
	for _, key := range []ruleKey{
		{TableClubs, OpUpdate},
		{TableClubs, OpDelete},
		{TableEvents, OpUpdate},
		{TableEvents, OpDelete},
	} {
		_, ok := a.rules[key]
		assert.True(t, ok, "missing rule for %s/%s", key.table, key.op)
	}
}

func TestRegister_RejectsSelfReferentialRule(t *testing.T) {
	a := &Authorizer{rules: make(map[ruleKey]Rule)}

	err := a.register(Rule{
		Table: TableClubMembers,
		Op:    OpInsert,
		Reads: []Table{TableClubMembers},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly lower-ranked")
}

func TestRegister_RejectsEqualRankRead(t *testing.T) {
	// events and club_members share a rank; neither may read the other.
	a := &Authorizer{rules: make(map[ruleKey]Rule)}

	err := a.register(Rule{
		Table: TableEvents,
		Op:    OpInsert,
		Reads: []Table{TableClubMembers},
	})

	require.Error(t, err)
}

func TestRegister_RejectsHigherRankRead(t *testing.T) {
	a := &Authorizer{rules: make(map[ruleKey]Rule)}

	err := a.register(Rule{
		Table: TableClubs,
		Op:    OpUpdate,
		Reads: []Table{TableEventFlags},
	})

	require.Error(t, err)
}

func TestRegister_AcceptsLowerRankReads(t *testing.T) {
	a := &Authorizer{rules: make(map[ruleKey]Rule)}

	err := a.register(Rule{
		Table: TableEventFlags,
		Op:    OpUpdate,
		Reads: []Table{TableEvents, TableClubs},
	})

	require.NoError(t, err)
}

func TestRegister_RejectsDuplicateRule(t *testing.T) {
	a := &Authorizer{rules: make(map[ruleKey]Rule)}

	require.NoError(t, a.register(Rule{Table: TableClubs, Op: OpSelect, Public: true}))
	err := a.register(Rule{Table: TableClubs, Op: OpSelect, Public: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAuthorize_AnonymousPublicRead(t *testing.T) {
	a := newTestAuthorizer(t, &fakeResolver{})

	err := a.Authorize(context.Background(), nil, TableClubs, OpSelect, Target{})

	assert.NoError(t, err)
}

func TestAuthorize_AnonymousWriteRejected(t *testing.T) {
	a := newTestAuthorizer(t, &fakeResolver{})

	err := a.Authorize(context.Background(), nil, TableClubs, OpInsert, Target{})

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorize_UnknownOperationFailsClosed(t *testing.T) {
	a := newTestAuthorizer(t, &fakeResolver{})
	p := &Principal{ID: uuid.New()}

	// There is deliberately no delete rule for moderation_logs.
	err := a.Authorize(context.Background(), p, TableModerationLogs, OpDelete, Target{})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorize_ResolverErrorPropagates(t *testing.T) {
	a := newTestAuthorizer(t, &fakeResolver{clubOwners: map[int64]uuid.UUID{}})
	p := &Principal{ID: uuid.New()}

	err := a.Authorize(context.Background(), p, TableEvents, OpInsert, Target{ClubID: 99, OwnerID: p.ID})

	assert.ErrorIs(t, err, ErrTargetNotFound)
}
