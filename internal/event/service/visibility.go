package service

import (
	"strings"
	"time"

	"campusgate/internal/event/models"
	identity "campusgate/internal/identity/models"
)

// CanAccess reports whether a principal may see an event. Only active events
// are visible; the level then gates by role and email domain.
func CanAccess(ev models.Event, p identity.Principal) bool {
	if !ev.IsActive() {
		return false
	}
	if p.Role == identity.RoleNone {
		return false
	}
	switch ev.VisibilityLevel {
	case models.VisibilityPublic:
		return true
	case models.VisibilityCollege:
		if p.Role == identity.RoleAdmin {
			return true
		}
		return strings.EqualFold(p.Domain, ev.CollegeDomain)
	case models.VisibilityAdminOnly:
		return p.Role == identity.RoleAdmin
	}
	return false
}

// AccessibleEvents filters a slice down to the events the principal may see,
// preserving input order.
func AccessibleEvents(p identity.Principal, events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if CanAccess(ev, p) {
			out = append(out, ev)
		}
	}
	return out
}

// CanRegister reports whether a principal may register for an event at the
// given instant. Registration closes at the event start, or earlier when a
// deadline is set.
func CanRegister(ev models.Event, p identity.Principal, now time.Time) bool {
	if !CanAccess(ev, p) {
		return false
	}
	if !now.Before(ev.Datetime) {
		return false
	}
	if ev.RegistrationDeadline != nil && !now.Before(*ev.RegistrationDeadline) {
		return false
	}
	return capacityRemaining(ev)
}

// capacityRemaining is the extension point for capacity enforcement.
// TODO: enforce ev.Capacity against Store.CountRegistrations once paid
// registrations settle synchronously.
func capacityRemaining(_ models.Event) bool {
	return true
}
