package models

import (
	"strings"
	"time"

	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
)

// VisibilityLevel controls which principals may see an event.
type VisibilityLevel string

const (
	// VisibilityPublic: every authenticated principal.
	VisibilityPublic VisibilityLevel = "public"
	// VisibilityCollege: principals whose email domain matches the event's
	// college domain.
	VisibilityCollege VisibilityLevel = "college"
	// VisibilityAdminOnly: admins only.
	VisibilityAdminOnly VisibilityLevel = "admin_only"
)

func (v VisibilityLevel) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityCollege, VisibilityAdminOnly:
		return true
	}
	return false
}

func (v VisibilityLevel) String() string { return string(v) }

// EventStatus is the publication state of an event. Only active events are
// candidates for visibility filtering.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusActive    EventStatus = "active"
	StatusCancelled EventStatus = "cancelled"
	StatusCompleted EventStatus = "completed"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s EventStatus) String() string { return string(s) }

// Event is a registerable activity.
//
// Invariants:
//   - VisibilityCollege requires a non-empty CollegeDomain
//   - Capacity 0 means unlimited
type Event struct {
	ID          id.EventID `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`

	Datetime             time.Time  `json:"datetime"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	Capacity             int        `json:"capacity"`

	VisibilityLevel VisibilityLevel `json:"visibility_level"`
	CollegeDomain   string          `json:"college_domain,omitempty"`
	Status          EventStatus     `json:"status"`

	CreatedBy id.PrincipalID `json:"created_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsActive reports whether the event is a candidate for visibility checks.
func (e Event) IsActive() bool { return e.Status == StatusActive }

// Validate enforces construction invariants.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event title is required")
	}
	if e.Datetime.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "event datetime is required")
	}
	if !e.VisibilityLevel.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid visibility level %q", e.VisibilityLevel)
	}
	if !e.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "invalid event status %q", e.Status)
	}
	if e.Capacity < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "event capacity cannot be negative")
	}
	if e.VisibilityLevel == VisibilityCollege && strings.TrimSpace(e.CollegeDomain) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "college events require a college domain")
	}
	return nil
}

// RegistrationStatus tracks a registration's lifecycle. The core only writes
// confirmed registrations; the other states belong to payment and cancel
// flows handled elsewhere.
type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration links a principal to an event.
type Registration struct {
	ID           id.RegistrationID  `json:"id"`
	EventID      id.EventID         `json:"event_id"`
	PrincipalID  id.PrincipalID     `json:"principal_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
}
