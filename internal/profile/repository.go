package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles profile data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new profile repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Ensure inserts the profile row for a principal if it does not exist yet and
// returns the current row. The email is refreshed from the token on conflict
// so the profile tracks the auth provider.
func (r *Repository) Ensure(ctx context.Context, userID uuid.UUID, email string) (*Profile, error) {
	query := `
		INSERT INTO profiles (user_id, email)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email
		RETURNING user_id, email, full_name, avatar_url, is_admin, created_at
	`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID, email).Scan(
		&profile.UserID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.IsAdmin,
		&profile.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	return profile, nil
}

// GetByID retrieves a profile by user ID
func (r *Repository) GetByID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT user_id, email, full_name, avatar_url, is_admin, created_at
		FROM profiles
		WHERE user_id = $1
	`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.IsAdmin,
		&profile.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Update modifies a profile's display fields
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    avatar_url = COALESCE($3, avatar_url)
		WHERE user_id = $1
		RETURNING user_id, email, full_name, avatar_url, is_admin, created_at
	`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID, req.FullName, req.AvatarURL).Scan(
		&profile.UserID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.IsAdmin,
		&profile.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
