package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// PostgresStore persists principal profiles. Pure I/O; onboarding rules live
// in the identity service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `
	id, email, domain, role, first_name, last_name, department, year,
	contact, organization, username, interests, password_set,
	personalization_done, created_at, updated_at
`

func (s *PostgresStore) FindByID(ctx context.Context, pid id.PrincipalID) (models.Principal, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, uuid.UUID(pid)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Principal{}, sentinel.ErrNotFound
		}
		return models.Principal{}, fmt.Errorf("find profile by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (models.Principal, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Principal{}, sentinel.ErrNotFound
		}
		return models.Principal{}, fmt.Errorf("find profile by email: %w", err)
	}
	return p, nil
}

// Upsert merges the profile by ID in a single atomic statement. COALESCE on
// NULLIF keeps populated columns when the incoming field is zero-valued, so
// partial onboarding writes never erase earlier progress.
func (s *PostgresStore) Upsert(ctx context.Context, p models.Principal) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			domain = EXCLUDED.domain,
			role = COALESCE(NULLIF(EXCLUDED.role, ''), profiles.role),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), profiles.first_name),
			last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), profiles.last_name),
			department = COALESCE(NULLIF(EXCLUDED.department, ''), profiles.department),
			year = COALESCE(NULLIF(EXCLUDED.year, ''), profiles.year),
			contact = COALESCE(NULLIF(EXCLUDED.contact, ''), profiles.contact),
			organization = COALESCE(NULLIF(EXCLUDED.organization, ''), profiles.organization),
			username = COALESCE(NULLIF(EXCLUDED.username, ''), profiles.username),
			interests = CASE WHEN EXCLUDED.interests = '[]'::jsonb THEN profiles.interests ELSE EXCLUDED.interests END,
			password_set = profiles.password_set OR EXCLUDED.password_set,
			personalization_done = profiles.personalization_done OR EXCLUDED.personalization_done,
			updated_at = EXCLUDED.updated_at
	`
	interests, err := json.Marshal(orEmpty(p.Interests))
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.Email,
		p.Domain,
		p.Role.String(),
		p.FirstName,
		p.LastName,
		p.Department,
		p.Year,
		p.Contact,
		p.Organization,
		p.Username,
		interests,
		p.PasswordSet,
		p.PersonalizationDone,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Principal, error) {
	var (
		p         models.Principal
		pid       uuid.UUID
		role      string
		interests []byte
	)
	err := row.Scan(
		&pid, &p.Email, &p.Domain, &role, &p.FirstName, &p.LastName,
		&p.Department, &p.Year, &p.Contact, &p.Organization, &p.Username,
		&interests, &p.PasswordSet, &p.PersonalizationDone,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Principal{}, err
	}
	p.ID = id.PrincipalID(pid)
	p.Role = models.Role(role)
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &p.Interests); err != nil {
			return models.Principal{}, fmt.Errorf("decode interests: %w", err)
		}
	}
	return p, nil
}
