package flag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository handles flag data persistence. Event and club flags live in two
// tables of identical shape; the target type selects the table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new flag repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func tableFor(t TargetType) (table, idColumn string) {
	if t == TargetClub {
		return "club_flags", "club_id"
	}
	return "event_flags", "event_id"
}

// Insert files a flag. A duplicate (target, reporter) pair maps to
// ErrAlreadyFlagged; a missing target maps to ErrTargetMissing via the
// foreign key.
func (r *Repository) Insert(ctx context.Context, reporterID uuid.UUID, req *CreateFlagRequest) (*Flag, error) {
	table, idColumn := tableFor(req.TargetType)
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, reporter_id, reason, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, %s, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at
	`, table, idColumn, idColumn)

	flag := &Flag{TargetType: req.TargetType}
	err := r.db.QueryRowContext(ctx, query, req.TargetID, reporterID, req.Reason, req.Details).Scan(
		&flag.ID,
		&flag.TargetID,
		&flag.ReporterID,
		&flag.Reason,
		&flag.Details,
		&flag.Status,
		&flag.ReviewedBy,
		&flag.ReviewedAt,
		&flag.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, ErrAlreadyFlagged
			case "23503":
				return nil, ErrTargetMissing
			}
		}
		return nil, fmt.Errorf("failed to insert flag: %w", err)
	}

	return flag, nil
}

// GetByID retrieves a flag by target type and ID
func (r *Repository) GetByID(ctx context.Context, targetType TargetType, id int64) (*Flag, error) {
	table, idColumn := tableFor(targetType)
	query := fmt.Sprintf(`
		SELECT id, %s, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at
		FROM %s
		WHERE id = $1
	`, idColumn, table)

	flag := &Flag{TargetType: targetType}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&flag.ID,
		&flag.TargetID,
		&flag.ReporterID,
		&flag.Reason,
		&flag.Details,
		&flag.Status,
		&flag.ReviewedBy,
		&flag.ReviewedAt,
		&flag.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flag: %w", err)
	}

	return flag, nil
}

// ListForTarget retrieves all flags filed against one target
func (r *Repository) ListForTarget(ctx context.Context, targetType TargetType, targetID int64) ([]*Flag, error) {
	table, idColumn := tableFor(targetType)
	query := fmt.Sprintf(`
		SELECT id, %s, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at
		FROM %s
		WHERE %s = $1
		ORDER BY created_at DESC
	`, idColumn, table, idColumn)

	rows, err := r.db.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	return scanFlags(rows, targetType)
}

// ListByReporter retrieves every flag a principal has filed, both target types
func (r *Repository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Flag, error) {
	query := `
		SELECT id, event_id, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at, 'event' AS target_type
		FROM event_flags
		WHERE reporter_id = $1
		UNION ALL
		SELECT id, club_id, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at, 'club' AS target_type
		FROM club_flags
		WHERE reporter_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	var flags []*Flag
	for rows.Next() {
		flag := &Flag{}
		if err := rows.Scan(
			&flag.ID,
			&flag.TargetID,
			&flag.ReporterID,
			&flag.Reason,
			&flag.Details,
			&flag.Status,
			&flag.ReviewedBy,
			&flag.ReviewedAt,
			&flag.CreatedAt,
			&flag.TargetType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, flag)
	}

	return flags, nil
}

// UpdateStatus records the review decision on a flag
func (r *Repository) UpdateStatus(ctx context.Context, targetType TargetType, id int64, status Status, reviewedBy uuid.UUID) (*Flag, error) {
	table, idColumn := tableFor(targetType)
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1
		RETURNING id, %s, reporter_id, reason, details, status, reviewed_by, reviewed_at, created_at
	`, table, idColumn)

	flag := &Flag{TargetType: targetType}
	err := r.db.QueryRowContext(ctx, query, id, status, reviewedBy, time.Now()).Scan(
		&flag.ID,
		&flag.TargetID,
		&flag.ReporterID,
		&flag.Reason,
		&flag.Details,
		&flag.Status,
		&flag.ReviewedBy,
		&flag.ReviewedAt,
		&flag.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update flag: %w", err)
	}

	return flag, nil
}

func scanFlags(rows *sql.Rows, targetType TargetType) ([]*Flag, error) {
	var flags []*Flag
	for rows.Next() {
		flag := &Flag{TargetType: targetType}
		if err := rows.Scan(
			&flag.ID,
			&flag.TargetID,
			&flag.ReporterID,
			&flag.Reason,
			&flag.Details,
			&flag.Status,
			&flag.ReviewedBy,
			&flag.ReviewedAt,
			&flag.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, flag)
	}
	return flags, nil
}
