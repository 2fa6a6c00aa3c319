package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository handles event data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new event repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const eventColumns = `id, club_id, created_by, title, description, date, location, category, is_free, price, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*Event, error) {
	event := &Event{}
	err := row.Scan(
		&event.ID,
		&event.ClubID,
		&event.CreatedBy,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Category,
		&event.IsFree,
		&event.Price,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Create inserts a new event
func (r *Repository) Create(ctx context.Context, createdBy uuid.UUID, req *CreateEventRequest) (*Event, error) {
	query := `
		INSERT INTO events (club_id, created_by, title, description, date, location, category, is_free, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRowContext(ctx, query,
		req.ClubID, createdBy, req.Title, req.Description, req.Date, req.Location, req.Category, req.IsFree, req.Price,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// GetByID retrieves an event by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListFilter narrows the public event directory
type ListFilter struct {
	ClubID   int64
	Category string
	Upcoming bool
}

// List retrieves events of approved clubs matching the filter
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Event, int, error) {
	where := `c.status = 'approved'`
	args := []interface{}{}

	if filter.ClubID != 0 {
		args = append(args, filter.ClubID)
		where += ` AND e.club_id = $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += ` AND e.category = $` + strconv.Itoa(len(args))
	}
	if filter.Upcoming {
		where += ` AND e.date >= NOW()`
	}

	countQuery := `SELECT COUNT(*) FROM events e JOIN clubs c ON e.club_id = c.id WHERE ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	args = append(args, limit, offset)
	query := `
		SELECT e.id, e.club_id, e.created_by, e.title, e.description, e.date, e.location, e.category, e.is_free, e.price, e.created_at
		FROM events e
		JOIN clubs c ON e.club_id = c.id
		WHERE ` + where + `
		ORDER BY e.date
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, total, nil
}

// Update modifies an existing event. Providing is_free rewrites the pricing
// pair; the check constraint guards the invariant.
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateEventRequest) (*Event, error) {
	query := `
		UPDATE events
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    date = COALESCE($4, date),
		    location = COALESCE($5, location),
		    category = COALESCE($6, category),
		    is_free = COALESCE($7, is_free),
		    price = CASE WHEN $7 IS NOT NULL THEN $8 ELSE price END
		WHERE id = $1
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRowContext(ctx, query,
		id, req.Title, req.Description, req.Date, req.Location, req.Category, req.IsFree, req.Price,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// Delete removes an event; registrations and flags cascade
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// InsertRegistration registers a user for an event. A duplicate pair maps to
// ErrAlreadyRegistered.
func (r *Repository) InsertRegistration(ctx context.Context, eventID int64, userID uuid.UUID) (*Registration, error) {
	query := `
		INSERT INTO event_registrations (event_id, user_id)
		VALUES ($1, $2)
		RETURNING id, event_id, user_id, registered_at
	`

	reg := &Registration{}
	err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	return reg, nil
}

// ListRegistrations retrieves an event's registrations enriched with profile
// display fields where the profile exists.
func (r *Repository) ListRegistrations(ctx context.Context, eventID int64) ([]*Registration, error) {
	query := `
		SELECT er.id, er.event_id, er.user_id, er.registered_at, p.full_name, p.avatar_url
		FROM event_registrations er
		LEFT JOIN profiles p ON er.user_id = p.user_id
		WHERE er.event_id = $1
		ORDER BY er.registered_at
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		reg := &Registration{}
		if err := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.UserID,
			&reg.RegisteredAt,
			&reg.FullName,
			&reg.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	return regs, nil
}

// DeleteRegistration removes a user's registration for an event
func (r *Repository) DeleteRegistration(ctx context.Context, eventID int64, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
