// Package authz implements the authorization rule set for ASU Connect as an
// explicit registry of per-(table, operation) predicates, evaluated before
// every guarded data access.
//
// Each rule declares which tables its check reads. The registry only accepts
// a rule if every table it reads ranks strictly below the rule's own table,
// so a predicate can never consult the table it guards, directly or through
// another rule. That makes the recursive-policy failure mode (a predicate on
// table T re-querying T until the evaluator aborts) unrepresentable instead
// of merely discouraged.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Table identifies a guarded table.
type Table string

const (
	TableProfiles           Table = "profiles"
	TableClubs              Table = "clubs"
	TableClubMembers        Table = "club_members"
	TableEvents             Table = "events"
	TableEventRegistrations Table = "event_registrations"
	TableEventFlags         Table = "event_flags"
	TableClubFlags          Table = "club_flags"
	TableModerationLogs     Table = "moderation_logs"
)

// tableRank orders tables by ownership dependency: profiles < clubs <
// club_members/events < registrations/flags < moderation_logs. A rule may
// only read tables of strictly lower rank than its own.
var tableRank = map[Table]int{
	TableProfiles:           0,
	TableClubs:              1,
	TableClubMembers:        2,
	TableEvents:             2,
	TableEventRegistrations: 3,
	TableEventFlags:         3,
	TableClubFlags:          3,
	TableModerationLogs:     4,
}

// Operation is the kind of access being authorized.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"

	// OpModerate is the platform-admin decision path on a row, kept separate
	// from OpUpdate so content edits stay owner-scoped.
	OpModerate Operation = "moderate"
)

// Target carries the facts about the row under authorization that the caller
// already holds. Fields irrelevant to a given rule are left zero.
type Target struct {
	ClubID  int64
	EventID int64

	// RowUserID is the subject of a membership, registration, or flag row
	// (the member, registrant, or reporter).
	RowUserID uuid.UUID

	// OwnerID is the created_by value of the row being inserted or mutated,
	// when the caller supplies it.
	OwnerID uuid.UUID

	// Role and Status are the proposed values of a membership row insert.
	Role   string
	Status string
}

// Resolver loads ownership facts for rule checks. Every method reads only the
// tables named in its doc comment; rules declare those tables in Reads so the
// registry can verify the rank discipline.
type Resolver interface {
	// ClubOwner returns the created_by of the given club. Reads clubs.
	ClubOwner(ctx context.Context, clubID int64) (uuid.UUID, error)

	// EventOwner returns the created_by of the club owning the given event.
	// Reads events and clubs.
	EventOwner(ctx context.Context, eventID int64) (uuid.UUID, error)
}

var (
	// ErrUnauthenticated means the operation requires a principal and none
	// was supplied.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the principal lacks the required ownership or role
	// relation. The wrapping error carries the rule's deny reason.
	ErrForbidden = errors.New("forbidden")

	// ErrTargetNotFound means a resolver could not find the referenced row.
	ErrTargetNotFound = errors.New("target row not found")
)

type checkFunc func(ctx context.Context, res Resolver, p *Principal, t Target) (allowed bool, reason string, err error)

// Rule is one authorization predicate for a (table, operation) pair.
type Rule struct {
	Table Table
	Op    Operation

	// Public marks the operation as allowed for anonymous principals. The
	// check still runs for authenticated callers that need more than the
	// public view.
	Public bool

	// Reads lists every table the check consults via the Resolver. Each must
	// rank strictly below Table.
	Reads []Table

	check checkFunc
}

// Authorizer evaluates the registered rule set.
type Authorizer struct {
	resolver Resolver
	rules    map[ruleKey]Rule
}

type ruleKey struct {
	table Table
	op    Operation
}

// New builds an Authorizer from the default rule set, verifying the rank
// discipline for every rule.
func New(res Resolver) (*Authorizer, error) {
	a := &Authorizer{
		resolver: res,
		rules:    make(map[ruleKey]Rule),
	}
	for _, r := range defaultRules() {
		if err := a.register(r); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Authorizer) register(r Rule) error {
	rank, ok := tableRank[r.Table]
	if !ok {
		return fmt.Errorf("authz: unknown table %q", r.Table)
	}

	for _, read := range r.Reads {
		readRank, ok := tableRank[read]
		if !ok {
			return fmt.Errorf("authz: rule %s/%s reads unknown table %q", r.Table, r.Op, read)
		}
		if readRank >= rank {
			return fmt.Errorf("authz: rule %s/%s reads %s: a predicate may only consult strictly lower-ranked tables", r.Table, r.Op, read)
		}
	}

	key := ruleKey{r.Table, r.Op}
	if _, dup := a.rules[key]; dup {
		return fmt.Errorf("authz: duplicate rule for %s/%s", r.Table, r.Op)
	}
	a.rules[key] = r
	return nil
}

// Authorize decides whether principal p may perform op on the given table and
// target. It returns nil on allow, ErrUnauthenticated or ErrForbidden (wrapped
// with the deny reason) on deny, or a resolver error.
func (a *Authorizer) Authorize(ctx context.Context, p *Principal, table Table, op Operation, t Target) error {
	rule, ok := a.rules[ruleKey{table, op}]
	if !ok {
		// Fail closed: an operation without a rule is never permitted.
		return fmt.Errorf("%w: no rule permits %s on %s", ErrForbidden, op, table)
	}

	if p == nil {
		if rule.Public {
			return nil
		}
		return ErrUnauthenticated
	}

	if rule.check == nil {
		return nil
	}

	allowed, reason, err := rule.check(ctx, a.resolver, p, t)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, reason)
	}
	return nil
}
