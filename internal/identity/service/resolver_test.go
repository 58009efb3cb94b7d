package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"campusgate/internal/identity/models"
	"campusgate/internal/identity/store/whitelist"
	dErrors "campusgate/pkg/domain-errors"
)

const collegeDomain = "dbcblr.edu.in"

type ResolverSuite struct {
	suite.Suite
	store    *whitelist.InMemory
	resolver *Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.store = whitelist.NewInMemory()
	s.resolver = NewResolver(s.store, collegeDomain)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) TestWhitelistPrecedence() {
	s.Run("whitelisted role wins over domain inference", func() {
		s.store.Seed("chair@dbcblr.edu.in", "Chair", models.RoleAdmin)

		res, err := s.resolver.Resolve(context.Background(), "chair@dbcblr.edu.in", models.FlowModeStudent)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, res.Role)
		s.True(res.Whitelisted)
	})

	s.Run("whitelisted role wins regardless of mode", func() {
		s.store.Seed("volunteer@gmail.com", "Volunteer", models.RoleStudent)

		for _, mode := range []models.FlowMode{models.FlowModeStudent, models.FlowModeGuest, models.FlowModePublic} {
			res, err := s.resolver.Resolve(context.Background(), "volunteer@gmail.com", mode)
			s.Require().NoError(err, "mode %s", mode)
			s.Equal(models.RoleStudent, res.Role, "mode %s", mode)
		}
	})

	s.Run("email normalization applies before lookup", func() {
		s.store.Seed("mixed@example.com", "Mixed", models.RoleAttendee)

		res, err := s.resolver.Resolve(context.Background(), "  MIXED@Example.COM ", models.FlowModeGuest)
		s.Require().NoError(err)
		s.Equal("mixed@example.com", res.Email)
		s.True(res.Whitelisted)
	})
}

func (s *ResolverSuite) TestAdminModeRequiresWhitelist() {
	s.Run("unlisted email is denied even on the college domain", func() {
		_, err := s.resolver.Resolve(context.Background(), "someone@dbcblr.edu.in", models.FlowModeAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("whitelisted admin is allowed", func() {
		s.store.Seed("head@gmail.com", "Head", models.RoleAdmin)

		res, err := s.resolver.Resolve(context.Background(), "head@gmail.com", models.FlowModeAdmin)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, res.Role)
	})
}

func (s *ResolverSuite) TestStudentDomainRule() {
	s.Run("college domain grants attendee access", func() {
		res, err := s.resolver.Resolve(context.Background(), "student@dbcblr.edu.in", models.FlowModeStudent)
		s.Require().NoError(err)
		s.Equal(models.RoleAttendee, res.Role)
		s.False(res.Whitelisted)
	})

	s.Run("foreign domain is rejected", func() {
		_, err := s.resolver.Resolve(context.Background(), "student@gmail.com", models.FlowModeStudent)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ResolverSuite) TestGuestAndPublicModes() {
	s.Run("guest mode accepts any well-formed email as attendee", func() {
		res, err := s.resolver.Resolve(context.Background(), "visitor@outlook.com", models.FlowModeGuest)
		s.Require().NoError(err)
		s.Equal(models.RoleAttendee, res.Role)
		s.Equal("outlook.com", res.Domain)
	})

	s.Run("public mode yields the public role", func() {
		res, err := s.resolver.Resolve(context.Background(), "browser@example.org", models.FlowModePublic)
		s.Require().NoError(err)
		s.Equal(models.RolePublic, res.Role)
	})
}

func (s *ResolverSuite) TestMalformedEmails() {
	for _, raw := range []string{"", "no-at-sign", "@nodomain.com", "user@", "two@@ats.com", "user@nodot"} {
		_, err := s.resolver.Resolve(context.Background(), raw, models.FlowModeGuest)
		s.Require().Error(err, "email %q", raw)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), "email %q", raw)
	}
}
