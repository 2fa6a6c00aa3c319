package moderation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles moderation log persistence. The table is append-only:
// no update or delete paths exist.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new moderation repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a moderation log entry
func (r *Repository) Insert(ctx context.Context, adminID uuid.UUID, action, targetType, targetID string, notes *string) (*LogEntry, error) {
	query := `
		INSERT INTO moderation_logs (admin_id, action, target_type, target_id, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, admin_id, action, target_type, target_id, notes, created_at
	`

	entry := &LogEntry{}
	err := r.db.QueryRowContext(ctx, query, adminID, action, targetType, targetID, notes).Scan(
		&entry.ID,
		&entry.AdminID,
		&entry.Action,
		&entry.TargetType,
		&entry.TargetID,
		&entry.Notes,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert moderation log: %w", err)
	}

	return entry, nil
}

// List retrieves moderation log entries, most recent first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM moderation_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count moderation logs: %w", err)
	}

	query := `
		SELECT id, admin_id, action, target_type, target_id, notes, created_at
		FROM moderation_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list moderation logs: %w", err)
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		entry := &LogEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan moderation log: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}
