package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"campusgate/internal/audit"
	"campusgate/internal/identity/models"
	"campusgate/internal/identity/store/whitelist"
	dErrors "campusgate/pkg/domain-errors"
)

const superAdmin = "juniorsblr2024@gmail.com"

type capturingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturingPublisher) Emit(_ context.Context, event audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) kinds() []audit.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.Kind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

type WhitelistServiceSuite struct {
	suite.Suite
	store     *whitelist.InMemory
	publisher *capturingPublisher
	svc       *Whitelist
}

func (s *WhitelistServiceSuite) SetupTest() {
	s.store = whitelist.NewInMemory()
	s.publisher = &capturingPublisher{}
	s.svc = NewWhitelist(s.store, superAdmin, s.publisher)
}

func TestWhitelistServiceSuite(t *testing.T) {
	suite.Run(t, new(WhitelistServiceSuite))
}

func (s *WhitelistServiceSuite) TestAdd() {
	s.Run("creates an active entry and emits an audit event", func() {
		entry, err := s.svc.Add(context.Background(), superAdmin, "helper@gmail.com", "Helper", models.RoleAttendee)
		s.Require().NoError(err)
		s.Equal("helper@gmail.com", entry.Email)
		s.True(entry.IsActive)
		s.Contains(s.publisher.kinds(), audit.KindWhitelistAdded)
	})

	s.Run("duplicate active entry is a conflict", func() {
		_, err := s.svc.Add(context.Background(), superAdmin, "twice@gmail.com", "Twice", models.RoleStudent)
		s.Require().NoError(err)

		_, err = s.svc.Add(context.Background(), superAdmin, "twice@gmail.com", "Twice", models.RoleStudent)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("super admin cannot be demoted", func() {
		_, err := s.svc.Add(context.Background(), superAdmin, superAdmin, "Super", models.RoleStudent)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *WhitelistServiceSuite) TestRemove() {
	s.Run("deactivates an existing entry", func() {
		_, err := s.svc.Add(context.Background(), superAdmin, "leaver@gmail.com", "Leaver", models.RoleAttendee)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.Remove(context.Background(), superAdmin, "leaver@gmail.com"))

		_, err = s.svc.Add(context.Background(), superAdmin, "leaver@gmail.com", "Leaver", models.RoleAttendee)
		s.NoError(err, "deactivated email can be whitelisted again")
		s.Contains(s.publisher.kinds(), audit.KindWhitelistRemoved)
	})

	s.Run("unknown email is not found", func() {
		err := s.svc.Remove(context.Background(), superAdmin, "ghost@gmail.com")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("super admin can never be removed", func() {
		err := s.svc.Remove(context.Background(), superAdmin, superAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
