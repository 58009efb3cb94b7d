package whitelist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

type WhitelistStoreSuite struct {
	suite.Suite
	store *InMemory
}

func (s *WhitelistStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestWhitelistStoreSuite(t *testing.T) {
	suite.Run(t, new(WhitelistStoreSuite))
}

func (s *WhitelistStoreSuite) entry(email string, role models.Role) *models.WhitelistEntry {
	entry, err := models.NewWhitelistEntry(id.NewWhitelistEntryID(), email, "Someone", role, time.Now())
	s.Require().NoError(err)
	return entry
}

func (s *WhitelistStoreSuite) TestLookupActive() {
	s.Run("returns an active entry", func() {
		s.Require().NoError(s.store.Create(context.Background(), s.entry("a@x.com", models.RoleAdmin)))

		found, err := s.store.LookupActive(context.Background(), "a@x.com")
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, found.Role)
	})

	s.Run("missing email returns ErrNotFound", func() {
		_, err := s.store.LookupActive(context.Background(), "missing@x.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicates never error, one active match wins", func() {
		s.Require().NoError(s.store.Create(context.Background(), s.entry("dup@x.com", models.RoleStudent)))
		s.Require().NoError(s.store.Create(context.Background(), s.entry("dup@x.com", models.RoleStudent)))

		found, err := s.store.LookupActive(context.Background(), "dup@x.com")
		s.Require().NoError(err)
		s.Equal(models.RoleStudent, found.Role)
	})

	s.Run("deactivated entries are invisible", func() {
		s.Require().NoError(s.store.Create(context.Background(), s.entry("gone@x.com", models.RoleAttendee)))
		s.Require().NoError(s.store.Deactivate(context.Background(), "gone@x.com"))

		_, err := s.store.LookupActive(context.Background(), "gone@x.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WhitelistStoreSuite) TestDeactivate() {
	s.Run("deactivates every active duplicate", func() {
		s.Require().NoError(s.store.Create(context.Background(), s.entry("multi@x.com", models.RoleStudent)))
		s.Require().NoError(s.store.Create(context.Background(), s.entry("multi@x.com", models.RoleAttendee)))

		s.Require().NoError(s.store.Deactivate(context.Background(), "multi@x.com"))

		_, err := s.store.LookupActive(context.Background(), "multi@x.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("nothing active returns ErrNotFound", func() {
		err := s.store.Deactivate(context.Background(), "never@x.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WhitelistStoreSuite) TestList() {
	s.Require().NoError(s.store.Create(context.Background(), s.entry("one@x.com", models.RoleAdmin)))
	s.Require().NoError(s.store.Create(context.Background(), s.entry("two@x.com", models.RoleStudent)))
	s.Require().NoError(s.store.Deactivate(context.Background(), "one@x.com"))

	entries, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.True(entries[0].IsActive, "active entries come first")
}
