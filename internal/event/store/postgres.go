package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusgate/internal/event/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

// PostgresStore persists events and registrations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `id, title, description, location, datetime, registration_deadline,
	capacity, visibility_level, college_domain, status, created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, ev models.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var deadline sql.NullTime
	if ev.RegistrationDeadline != nil {
		deadline = sql.NullTime{Time: *ev.RegistrationDeadline, Valid: true}
	}
	var createdBy sql.NullString
	if !ev.CreatedBy.IsZero() {
		createdBy = sql.NullString{String: ev.CreatedBy.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		ev.ID.String(), ev.Title, ev.Description, ev.Location,
		ev.Datetime, deadline, ev.Capacity,
		ev.VisibilityLevel.String(), nullIfEmpty(ev.CollegeDomain), ev.Status.String(),
		createdBy, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, eventID id.EventID) (models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, eventID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("find event: %w", err)
	}
	return ev, nil
}

// ListActive returns active events ordered by start time.
func (s *PostgresStore) ListActive(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = 'active' ORDER BY datetime ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, eventID id.EventID, status models.EventStatus, now time.Time) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, eventID.String(), status.String(), now)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateRegistration(ctx context.Context, reg models.Registration) error {
	query := `
		INSERT INTO registrations (id, event_id, principal_id, status, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, principal_id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		reg.ID.String(), reg.EventID.String(), reg.PrincipalID.String(),
		string(reg.Status), reg.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) CountRegistrations(ctx context.Context, eventID id.EventID) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'confirmed'`

	var count int
	if err := s.db.QueryRowContext(ctx, query, eventID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListRegistrationsByPrincipal(ctx context.Context, principalID id.PrincipalID) ([]models.Registration, error) {
	query := `
		SELECT id, event_id, principal_id, status, registered_at
		FROM registrations WHERE principal_id = $1 ORDER BY registered_at DESC`

	rows, err := s.db.QueryContext(ctx, query, principalID.String())
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []models.Registration
	for rows.Next() {
		var (
			reg                    models.Registration
			rawID, rawEvent, rawPr string
			status                 string
		)
		if err := rows.Scan(&rawID, &rawEvent, &rawPr, &status, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if reg.ID, err = id.ParseRegistrationID(rawID); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if reg.EventID, err = id.ParseEventID(rawEvent); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if reg.PrincipalID, err = id.ParsePrincipalID(rawPr); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Status = models.RegistrationStatus(status)
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var (
		ev            models.Event
		rawID         string
		deadline      sql.NullTime
		collegeDomain sql.NullString
		visibility    string
		status        string
		createdBy     sql.NullString
	)
	err := row.Scan(
		&rawID, &ev.Title, &ev.Description, &ev.Location,
		&ev.Datetime, &deadline, &ev.Capacity,
		&visibility, &collegeDomain, &status,
		&createdBy, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return models.Event{}, err
	}
	if ev.ID, err = id.ParseEventID(rawID); err != nil {
		return models.Event{}, err
	}
	if deadline.Valid {
		t := deadline.Time
		ev.RegistrationDeadline = &t
	}
	ev.CollegeDomain = collegeDomain.String
	ev.VisibilityLevel = models.VisibilityLevel(visibility)
	ev.Status = models.EventStatus(status)
	if createdBy.Valid {
		if ev.CreatedBy, err = id.ParsePrincipalID(createdBy.String); err != nil {
			return models.Event{}, err
		}
	}
	return ev, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
