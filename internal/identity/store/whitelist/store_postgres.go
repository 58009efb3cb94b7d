package whitelist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// PostgresStore persists whitelist entries in PostgreSQL. Pure I/O; the
// service layer owns precedence and conflict rules.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LookupActive returns any active entry for the email. The oldest active row
// wins so repeated lookups are stable even when duplicates exist.
func (s *PostgresStore) LookupActive(ctx context.Context, email string) (*models.WhitelistEntry, error) {
	query := `
		SELECT id, email, name, role, is_active, created_at
		FROM whitelist_entries
		WHERE lower(email) = lower($1) AND is_active
		ORDER BY created_at
		LIMIT 1
	`
	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lookup whitelist entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Create(ctx context.Context, entry *models.WhitelistEntry) error {
	query := `
		INSERT INTO whitelist_entries (id, email, name, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		entry.Email,
		entry.Name,
		entry.Role.String(),
		entry.IsActive,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create whitelist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE whitelist_entries SET is_active = FALSE WHERE lower(email) = lower($1) AND is_active`,
		email,
	)
	if err != nil {
		return fmt.Errorf("deactivate whitelist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate whitelist entry: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.WhitelistEntry, error) {
	query := `
		SELECT id, email, name, role, is_active, created_at
		FROM whitelist_entries
		ORDER BY is_active DESC, created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list whitelist entries: %w", err)
	}
	defer rows.Close()

	var out []models.WhitelistEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan whitelist entry: %w", err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list whitelist entries: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.WhitelistEntry, error) {
	var (
		entry   models.WhitelistEntry
		entryID uuid.UUID
		role    string
	)
	if err := row.Scan(&entryID, &entry.Email, &entry.Name, &role, &entry.IsActive, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.ID = id.WhitelistEntryID(entryID)
	entry.Role = models.Role(role)
	return &entry, nil
}
