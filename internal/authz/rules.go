package authz

import "context"

// Role and status values a membership self-insert is allowed to carry.
const (
	memberRole    = "member"
	pendingStatus = "pending"
)

// defaultRules is the full rule set. The directory is publicly browsable, so
// select rules are Public; row-level visibility filtering for listings
// (pending members, flags) lives in the repository queries, while these rules
// gate the restricted operations themselves.
func defaultRules() []Rule {
	return []Rule{
		// profiles: readable by anyone; a profile is mutated by its owner or
		// a platform admin. Admin status comes from the Principal, resolved
		// when the session was established, so this rule reads nothing.
		{Table: TableProfiles, Op: OpSelect, Public: true},
		{Table: TableProfiles, Op: OpUpdate, check: selfOrAdmin},

		// clubs: public directory; create requires created_by to be the
		// caller. Update and delete check the created_by of the row the
		// caller already fetched, so neither reads any table; a clubs rule
		// reading clubs would not register. Approval status changes go
		// through the separate moderate operation, admin only.
		{Table: TableClubs, Op: OpSelect, Public: true},
		{Table: TableClubs, Op: OpInsert, check: insertAsSelfOwner},
		{Table: TableClubs, Op: OpUpdate, check: rowCreatedBySelf},
		{Table: TableClubs, Op: OpDelete, check: rowCreatedBySelf},
		{Table: TableClubs, Op: OpModerate, check: adminOnly},

		// club_members: ownership resolves through clubs, never through
		// club_members itself.
		{Table: TableClubMembers, Op: OpSelect, Public: true},
		{Table: TableClubMembers, Op: OpInsert, Reads: []Table{TableClubs}, check: memberSelfJoinOrClubOwner},
		{Table: TableClubMembers, Op: OpUpdate, Reads: []Table{TableClubs}, check: clubOwner},
		{Table: TableClubMembers, Op: OpDelete, Reads: []Table{TableClubs}, check: rowSubjectOrClubOwner},

		// events: create/update/delete require owning the parent club. The
		// club ID comes from the request (create) or from the event row the
		// caller already fetched (update/delete), so all three resolve
		// ownership by reading clubs only.
		{Table: TableEvents, Op: OpSelect, Public: true},
		{Table: TableEvents, Op: OpInsert, Reads: []Table{TableClubs}, check: eventInsertByClubOwner},
		{Table: TableEvents, Op: OpUpdate, Reads: []Table{TableClubs}, check: clubOwner},
		{Table: TableEvents, Op: OpDelete, Reads: []Table{TableClubs}, check: clubOwner},

		// event_registrations: self-service create, removal by the
		// registrant or the event's owner, attendee listing by the owner.
		{Table: TableEventRegistrations, Op: OpSelect, Reads: []Table{TableEvents, TableClubs}, check: eventOwner},
		{Table: TableEventRegistrations, Op: OpInsert, check: insertAsRowSubject},
		{Table: TableEventRegistrations, Op: OpDelete, Reads: []Table{TableEvents, TableClubs}, check: rowSubjectOrEventOwner},

		// flags: filed by the reporter, visible to reporter and target
		// owner, status mutated by the target owner only.
		{Table: TableEventFlags, Op: OpSelect, Reads: []Table{TableEvents, TableClubs}, check: rowSubjectOrEventOwner},
		{Table: TableEventFlags, Op: OpInsert, check: insertAsRowSubject},
		{Table: TableEventFlags, Op: OpUpdate, Reads: []Table{TableEvents, TableClubs}, check: eventOwner},
		{Table: TableClubFlags, Op: OpSelect, Reads: []Table{TableClubs}, check: rowSubjectOrClubOwner},
		{Table: TableClubFlags, Op: OpInsert, check: insertAsRowSubject},
		{Table: TableClubFlags, Op: OpUpdate, Reads: []Table{TableClubs}, check: clubOwner},

		// moderation_logs: append-only, admin-only.
		{Table: TableModerationLogs, Op: OpSelect, check: adminOnly},
		{Table: TableModerationLogs, Op: OpInsert, check: adminOnly},
	}
}

func selfOrAdmin(_ context.Context, _ Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.RowUserID || p.IsAdmin {
		return true, "", nil
	}
	return false, "profile belongs to another user", nil
}

func adminOnly(_ context.Context, _ Resolver, p *Principal, _ Target) (bool, string, error) {
	if p.IsAdmin {
		return true, "", nil
	}
	return false, "admin privileges required", nil
}

func insertAsSelfOwner(_ context.Context, _ Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.OwnerID {
		return true, "", nil
	}
	return false, "created_by must be the authenticated user", nil
}

func insertAsRowSubject(_ context.Context, _ Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.RowUserID {
		return true, "", nil
	}
	return false, "row must belong to the authenticated user", nil
}

func clubOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	owner, err := res.ClubOwner(ctx, t.ClubID)
	if err != nil {
		return false, "", err
	}
	if owner == p.ID {
		return true, "", nil
	}
	return false, "only the club owner may do this", nil
}

// rowCreatedBySelf checks the created_by of the row itself, which the caller
// supplies from the row it already fetched. No resolver read.
func rowCreatedBySelf(_ context.Context, _ Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.OwnerID {
		return true, "", nil
	}
	return false, "only the club owner may do this", nil
}

// eventInsertByClubOwner gates event creation on owning the parent club. The
// target carries the club ID from the request body, not an event ID, since
// the event row does not exist yet.
func eventInsertByClubOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	owner, err := res.ClubOwner(ctx, t.ClubID)
	if err != nil {
		return false, "", err
	}
	if owner == p.ID {
		return true, "", nil
	}
	return false, "only the club owner may create events for it", nil
}

func eventOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	owner, err := res.EventOwner(ctx, t.EventID)
	if err != nil {
		return false, "", err
	}
	if owner == p.ID {
		return true, "", nil
	}
	return false, "only the owner of the event's club may do this", nil
}

// memberSelfJoinOrClubOwner permits a membership insert either as a join
// request (the caller inserting themselves as a pending member) or as the
// club owner adding a row directly.
func memberSelfJoinOrClubOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.RowUserID && t.Role == memberRole && t.Status == pendingStatus {
		return true, "", nil
	}
	owner, err := res.ClubOwner(ctx, t.ClubID)
	if err != nil {
		return false, "", err
	}
	if owner == p.ID {
		return true, "", nil
	}
	return false, "join requests must be for yourself with role member and status pending", nil
}

func rowSubjectOrClubOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.RowUserID {
		return true, "", nil
	}
	return clubOwner(ctx, res, p, t)
}

func rowSubjectOrEventOwner(ctx context.Context, res Resolver, p *Principal, t Target) (bool, string, error) {
	if p.ID == t.RowUserID {
		return true, "", nil
	}
	return eventOwner(ctx, res, p, t)
}
