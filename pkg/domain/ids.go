package domain

import (
	"github.com/google/uuid"

	dErrors "campusgate/pkg/domain-errors"
)

// Typed IDs keep the compiler between us and the classic "passed the event ID
// where the principal ID goes" bug. All IDs are UUIDs under the hood.
type (
	PrincipalID      uuid.UUID
	EventID          uuid.UUID
	RegistrationID   uuid.UUID
	WhitelistEntryID uuid.UUID
	AuditEventID     uuid.UUID
)

func (id PrincipalID) String() string      { return uuid.UUID(id).String() }
func (id EventID) String() string          { return uuid.UUID(id).String() }
func (id RegistrationID) String() string   { return uuid.UUID(id).String() }
func (id WhitelistEntryID) String() string { return uuid.UUID(id).String() }
func (id AuditEventID) String() string     { return uuid.UUID(id).String() }

func (id PrincipalID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AuditEventID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewPrincipalID mints a fresh principal identifier.
func NewPrincipalID() PrincipalID { return PrincipalID(uuid.New()) }

// NewEventID mints a fresh event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewRegistrationID mints a fresh registration identifier.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewWhitelistEntryID mints a fresh whitelist entry identifier.
func NewWhitelistEntryID() WhitelistEntryID { return WhitelistEntryID(uuid.New()) }

// NewAuditEventID mints a fresh audit event identifier.
func NewAuditEventID() AuditEventID { return AuditEventID(uuid.New()) }

// ParsePrincipalID validates and converts an external string into a
// PrincipalID. IDs must be valid, non-nil UUIDs; anything else is rejected at
// the trust boundary with an invalid-input error.
func ParsePrincipalID(s string) (PrincipalID, error) {
	u, err := parseUUID(s, "principal id")
	return PrincipalID(u), err
}

// ParseEventID validates and converts an external string into an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// ParseRegistrationID validates and converts an external string into a
// RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be the nil UUID")
	}
	return u, nil
}
