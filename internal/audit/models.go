// Package audit records the security-relevant actions of the platform:
// whitelist changes, completed login flows, and event registrations. Events
// flow through a buffered publisher to a store worker so domain code never
// blocks on persistence.
package audit

import (
	"time"

	id "campusgate/pkg/domain"
)

// Kind names an audit event category.
type Kind string

const (
	KindWhitelistAdded      Kind = "whitelist_added"
	KindWhitelistRemoved    Kind = "whitelist_removed"
	KindFlowCompleted       Kind = "flow_completed"
	KindRegistrationCreated Kind = "registration_created"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           id.AuditEventID `json:"id"`
	Kind         Kind            `json:"kind"`
	ActorEmail   string          `json:"actor_email,omitempty"`
	SubjectEmail string          `json:"subject_email,omitempty"`
	ClientIP     string          `json:"client_ip,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	Device       string          `json:"device,omitempty"`
	Detail       string          `json:"detail,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}
