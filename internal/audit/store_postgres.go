package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "campusgate/pkg/domain"

	"github.com/google/uuid"
)

// PostgresStore persists audit events. Append-only.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, kind, actor_email, subject_email, client_ip, user_agent, device, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(event.ID),
		string(event.Kind),
		event.ActorEmail,
		event.SubjectEmail,
		event.ClientIP,
		event.UserAgent,
		event.Device,
		event.Detail,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByKind(ctx context.Context, kind Kind, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, kind, actor_email, subject_email, client_ip, user_agent, device, detail, created_at
		FROM audit_events
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event   Event
			eventID uuid.UUID
			kindStr string
		)
		if err := rows.Scan(&eventID, &kindStr, &event.ActorEmail, &event.SubjectEmail,
			&event.ClientIP, &event.UserAgent, &event.Device, &event.Detail, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ID = id.AuditEventID(eventID)
		event.Kind = Kind(kindStr)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
