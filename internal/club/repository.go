package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository handles club data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new club repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique_violation, which
// is how a concurrent duplicate join request loses the race.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create inserts a new club with status pending
func (r *Repository) Create(ctx context.Context, createdBy uuid.UUID, req *CreateClubRequest) (*Club, error) {
	query := `
		INSERT INTO clubs (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_by, status, created_at, updated_at
	`

	club := &Club{}
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Description, createdBy).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.CreatedBy,
		&club.Status,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}

	return club, nil
}

// GetByID retrieves a club by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Club, error) {
	query := `
		SELECT id, name, description, created_by, status, created_at, updated_at
		FROM clubs
		WHERE id = $1
	`

	club := &Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.CreatedBy,
		&club.Status,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}

	return club, nil
}

// List retrieves clubs filtered by status with pagination
func (r *Repository) List(ctx context.Context, status ClubStatus, limit, offset int) ([]*Club, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM clubs WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clubs: %w", err)
	}

	query := `
		SELECT id, name, description, created_by, status, created_at, updated_at
		FROM clubs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	clubs, err := scanClubs(rows)
	if err != nil {
		return nil, 0, err
	}

	return clubs, total, nil
}

// ListByUserID retrieves the clubs a user belongs to, any membership status
func (r *Repository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Club, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(DISTINCT c.id)
		FROM clubs c
		JOIN club_members cm ON c.id = cm.club_id
		WHERE cm.user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clubs: %w", err)
	}

	query := `
		SELECT c.id, c.name, c.description, c.created_by, c.status, c.created_at, c.updated_at
		FROM clubs c
		JOIN club_members cm ON c.id = cm.club_id
		WHERE cm.user_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	clubs, err := scanClubs(rows)
	if err != nil {
		return nil, 0, err
	}

	return clubs, total, nil
}

func scanClubs(rows *sql.Rows) ([]*Club, error) {
	var clubs []*Club
	for rows.Next() {
		club := &Club{}
		if err := rows.Scan(
			&club.ID,
			&club.Name,
			&club.Description,
			&club.CreatedBy,
			&club.Status,
			&club.CreatedAt,
			&club.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}
	return clubs, nil
}

// Update modifies a club's name and description
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateClubRequest) (*Club, error) {
	query := `
		UPDATE clubs
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_by, status, created_at, updated_at
	`

	club := &Club{}
	err := r.db.QueryRowContext(ctx, query, id, req.Name, req.Description).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.CreatedBy,
		&club.Status,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update club: %w", err)
	}

	return club, nil
}

// UpdateStatus sets a club's approval status (admin moderation path)
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status ClubStatus) (*Club, error) {
	query := `
		UPDATE clubs
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_by, status, created_at, updated_at
	`

	club := &Club{}
	err := r.db.QueryRowContext(ctx, query, id, status).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.CreatedBy,
		&club.Status,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update club status: %w", err)
	}

	return club, nil
}

// Delete removes a club; memberships, events, registrations and flags cascade
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete club: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClubNotFound
	}

	return nil
}

// InsertMember inserts a membership row. A duplicate (club_id, user_id) pair
// maps to ErrAlreadyMember so concurrent join requests surface as a conflict,
// not a generic failure.
func (r *Repository) InsertMember(ctx context.Context, clubID int64, userID uuid.UUID, role MemberRole, status MemberStatus) (*Member, error) {
	query := `
		INSERT INTO club_members (club_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, club_id, user_id, role, status, joined_at
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, clubID, userID, role, status).Scan(
		&member.ID,
		&member.ClubID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	return member, nil
}

// GetMember retrieves a specific membership row
func (r *Repository) GetMember(ctx context.Context, clubID int64, userID uuid.UUID) (*Member, error) {
	query := `
		SELECT cm.id, cm.club_id, cm.user_id, cm.role, cm.status, cm.joined_at, p.full_name, p.avatar_url
		FROM club_members cm
		LEFT JOIN profiles p ON cm.user_id = p.user_id
		WHERE cm.club_id = $1 AND cm.user_id = $2
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(
		&member.ID,
		&member.ClubID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
		&member.FullName,
		&member.AvatarURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ListMembers retrieves all membership rows of a club, enriched with profile
// display fields where the profile exists.
func (r *Repository) ListMembers(ctx context.Context, clubID int64) ([]*Member, error) {
	query := `
		SELECT cm.id, cm.club_id, cm.user_id, cm.role, cm.status, cm.joined_at, p.full_name, p.avatar_url
		FROM club_members cm
		LEFT JOIN profiles p ON cm.user_id = p.user_id
		WHERE cm.club_id = $1
		ORDER BY cm.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.ID,
			&member.ClubID,
			&member.UserID,
			&member.Role,
			&member.Status,
			&member.JoinedAt,
			&member.FullName,
			&member.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// UpdateMemberStatus applies the owner's decision to a pending request
func (r *Repository) UpdateMemberStatus(ctx context.Context, clubID int64, userID uuid.UUID, status MemberStatus) (*Member, error) {
	query := `
		UPDATE club_members
		SET status = $3
		WHERE club_id = $1 AND user_id = $2
		RETURNING id, club_id, user_id, role, status, joined_at
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, clubID, userID, status).Scan(
		&member.ID,
		&member.ClubID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update member status: %w", err)
	}

	return member, nil
}

// ResetMemberToPending turns a rejected row back into a pending request.
// Rejoining after rejection reuses the row instead of tripping the unique
// constraint.
func (r *Repository) ResetMemberToPending(ctx context.Context, clubID int64, userID uuid.UUID) (*Member, error) {
	query := `
		UPDATE club_members
		SET status = 'pending', joined_at = NOW()
		WHERE club_id = $1 AND user_id = $2 AND status = 'rejected'
		RETURNING id, club_id, user_id, role, status, joined_at
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(
		&member.ID,
		&member.ClubID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reset member: %w", err)
	}

	return member, nil
}

// RemoveMember deletes a membership row
func (r *Repository) RemoveMember(ctx context.Context, clubID int64, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`, clubID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}
