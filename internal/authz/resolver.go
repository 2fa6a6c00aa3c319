package authz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresResolver loads ownership facts with direct single-row queries.
type PostgresResolver struct {
	db *sql.DB
}

// NewPostgresResolver creates a resolver backed by the given database
func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

// ClubOwner returns the created_by of the given club. Reads clubs only.
func (r *PostgresResolver) ClubOwner(ctx context.Context, clubID int64) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT created_by FROM clubs WHERE id = $1`, clubID).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, fmt.Errorf("%w: club %d", ErrTargetNotFound, clubID)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve club owner: %w", err)
	}
	return owner, nil
}

// EventOwner returns the created_by of the club owning the given event.
// Reads events and clubs only.
func (r *PostgresResolver) EventOwner(ctx context.Context, eventID int64) (uuid.UUID, error) {
	query := `
		SELECT c.created_by
		FROM events e
		JOIN clubs c ON e.club_id = c.id
		WHERE e.id = $1
	`

	var owner uuid.UUID
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, fmt.Errorf("%w: event %d", ErrTargetNotFound, eventID)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve event owner: %w", err)
	}
	return owner, nil
}
