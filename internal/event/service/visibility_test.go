package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusgate/internal/event/models"
	identity "campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
)

func activeEvent(visibility models.VisibilityLevel, collegeDomain string) models.Event {
	return models.Event{
		ID:              id.NewEventID(),
		Title:           "Tech Fest",
		Datetime:        time.Now().Add(48 * time.Hour),
		VisibilityLevel: visibility,
		CollegeDomain:   collegeDomain,
		Status:          models.StatusActive,
	}
}

func principalWith(role identity.Role, domain string) identity.Principal {
	return identity.Principal{
		ID:     id.NewPrincipalID(),
		Email:  "p@" + domain,
		Domain: domain,
		Role:   role,
	}
}

func TestCanAccess(t *testing.T) {
	admin := principalWith(identity.RoleAdmin, "gmail.com")
	student := principalWith(identity.RoleStudent, "dbcblr.edu.in")
	attendee := principalWith(identity.RoleAttendee, "gmail.com")
	public := principalWith(identity.RolePublic, "gmail.com")

	t.Run("public events are visible to every role", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		for _, p := range []identity.Principal{admin, student, attendee, public} {
			assert.True(t, CanAccess(ev, p), "role %s", p.Role)
		}
	})

	t.Run("college events need a matching domain or admin", func(t *testing.T) {
		ev := activeEvent(models.VisibilityCollege, "dbcblr.edu.in")
		assert.True(t, CanAccess(ev, admin))
		assert.True(t, CanAccess(ev, student))
		assert.False(t, CanAccess(ev, attendee))
	})

	t.Run("college domain comparison is case-insensitive", func(t *testing.T) {
		ev := activeEvent(models.VisibilityCollege, "DBCBLR.EDU.IN")
		assert.True(t, CanAccess(ev, student))
	})

	t.Run("admin-only events are hidden from everyone else", func(t *testing.T) {
		ev := activeEvent(models.VisibilityAdminOnly, "")
		assert.True(t, CanAccess(ev, admin))
		assert.False(t, CanAccess(ev, student))
		assert.False(t, CanAccess(ev, attendee))
		assert.False(t, CanAccess(ev, public))
	})

	t.Run("inactive events are invisible regardless of role", func(t *testing.T) {
		for _, status := range []models.EventStatus{models.StatusDraft, models.StatusCancelled, models.StatusCompleted} {
			ev := activeEvent(models.VisibilityPublic, "")
			ev.Status = status
			assert.False(t, CanAccess(ev, admin), "status %s", status)
		}
	})

	t.Run("unresolved role sees nothing", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		assert.False(t, CanAccess(ev, identity.Principal{}))
	})
}

// Whatever a lower role can see, the admin can also see.
func TestAccessMonotonicity(t *testing.T) {
	events := []models.Event{
		activeEvent(models.VisibilityPublic, ""),
		activeEvent(models.VisibilityCollege, "dbcblr.edu.in"),
		activeEvent(models.VisibilityCollege, "other.edu"),
		activeEvent(models.VisibilityAdminOnly, ""),
	}
	admin := principalWith(identity.RoleAdmin, "gmail.com")

	for _, lower := range []identity.Principal{
		principalWith(identity.RoleStudent, "dbcblr.edu.in"),
		principalWith(identity.RoleAttendee, "gmail.com"),
		principalWith(identity.RolePublic, "gmail.com"),
	} {
		for _, ev := range events {
			if CanAccess(ev, lower) {
				assert.True(t, CanAccess(ev, admin),
					"admin must see %s event visible to %s", ev.VisibilityLevel, lower.Role)
			}
		}
	}
}

func TestAccessibleEventsPreservesOrder(t *testing.T) {
	first := activeEvent(models.VisibilityPublic, "")
	hidden := activeEvent(models.VisibilityAdminOnly, "")
	last := activeEvent(models.VisibilityPublic, "")

	visible := AccessibleEvents(principalWith(identity.RoleAttendee, "gmail.com"),
		[]models.Event{first, hidden, last})

	require.Len(t, visible, 2)
	assert.Equal(t, first.ID, visible[0].ID)
	assert.Equal(t, last.ID, visible[1].ID)
}

func TestCanRegister(t *testing.T) {
	attendee := principalWith(identity.RoleAttendee, "gmail.com")
	now := time.Now()

	t.Run("open window allows registration", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		assert.True(t, CanRegister(ev, attendee, now))
	})

	t.Run("closes at the event start", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		ev.Datetime = now.Add(-time.Minute)
		assert.False(t, CanRegister(ev, attendee, now))
	})

	t.Run("boundary instant counts as closed", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		ev.Datetime = now
		assert.False(t, CanRegister(ev, attendee, now))
	})

	t.Run("explicit deadline closes earlier", func(t *testing.T) {
		ev := activeEvent(models.VisibilityPublic, "")
		deadline := now.Add(-time.Hour)
		ev.RegistrationDeadline = &deadline
		assert.False(t, CanRegister(ev, attendee, now))
	})

	t.Run("inaccessible events cannot be registered for", func(t *testing.T) {
		ev := activeEvent(models.VisibilityAdminOnly, "")
		assert.False(t, CanRegister(ev, attendee, now))
	})
}
