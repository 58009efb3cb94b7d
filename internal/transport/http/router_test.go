package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	flowmodels "campusgate/internal/authflow/models"
	providermemory "campusgate/internal/authflow/provider/memory"
	flowservice "campusgate/internal/authflow/service"
	sessionstore "campusgate/internal/authflow/store/session"
	eventmodels "campusgate/internal/event/models"
	eventservice "campusgate/internal/event/service"
	eventstore "campusgate/internal/event/store"
	identity "campusgate/internal/identity/models"
	identityservice "campusgate/internal/identity/service"
	profilestore "campusgate/internal/identity/store/profile"
	whiteliststore "campusgate/internal/identity/store/whitelist"
	"campusgate/internal/token"
	id "campusgate/pkg/domain"
	"campusgate/pkg/testutil"
)

const (
	testDomain = "dbcblr.edu.in"
	testCode   = "123456"
)

type RouterSuite struct {
	suite.Suite
	router    http.Handler
	whitelist *whiteliststore.InMemory
	profiles  *profilestore.InMemory
	events    *eventstore.InMemory
	provider  *providermemory.Provider
	tokens    *token.Service
}

func (s *RouterSuite) SetupTest() {
	log := slog.New(slog.DiscardHandler)

	s.whitelist = whiteliststore.NewInMemory()
	s.profiles = profilestore.NewInMemory()
	s.events = eventstore.NewInMemory()
	s.provider = providermemory.New()
	s.provider.FixedCode = testCode
	s.tokens = token.NewService("router-test-key", "campusgate-test", time.Hour)

	resolver := identityservice.NewResolver(s.whitelist, testDomain)
	orchestrator := flowservice.NewOrchestrator(resolver, identityservice.NewOnboarding(),
		s.profiles, sessionstore.NewInMemory(30*time.Minute), s.provider, s.tokens, nil)
	profileSvc := identityservice.NewProfiles(s.profiles)
	whitelistSvc := identityservice.NewWhitelist(s.whitelist, "juniorsblr2024@gmail.com", nil)
	eventSvc := eventservice.NewEventService(s.events, nil)

	s.router = NewRouter(RouterConfig{
		Auth:           NewAuthHandler(orchestrator, log),
		Events:         NewEventHandler(eventSvc, s.profiles, log),
		Profile:        NewProfileHandler(profileSvc, log),
		Whitelist:      NewWhitelistHandler(whitelistSvc, log),
		TokenValidator: token.NewMiddlewareAdapter(s.tokens),
		Logger:         log,
		AllowedOrigins: []string{"*"},
		HealthChecks:   map[string]HealthChecker{"self": func(context.Context) error { return nil }},
	})
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

// signIn walks a guest flow through the API and returns the issued token.
func (s *RouterSuite) signIn(email, mode string) string {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/email",
		map[string]string{"email": email, "mode": mode}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp",
		map[string]string{"email": email, "code": testCode}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	result := testutil.UnmarshalResponse[flowmodels.FlowResult](s.T(), rr)
	require.NotEmpty(s.T(), result.Token)
	return result.Token
}

func (s *RouterSuite) seedEvent(visibility eventmodels.VisibilityLevel) eventmodels.Event {
	ev := eventmodels.Event{
		ID:              id.NewEventID(),
		Title:           "Hackathon",
		Datetime:        time.Now().Add(48 * time.Hour),
		VisibilityLevel: visibility,
		Status:          eventmodels.StatusActive,
	}
	s.Require().NoError(s.events.Create(context.Background(), ev))
	return ev
}

func (s *RouterSuite) TestHealthz() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *RouterSuite) TestGuestFlowAndEventAccess() {
	ev := s.seedEvent(eventmodels.VisibilityPublic)
	s.seedEvent(eventmodels.VisibilityAdminOnly)
	bearer := s.signIn("visitor@outlook.com", "guest")

	s.Run("events require a token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/events", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("attendee sees only public events", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		payload := testutil.UnmarshalResponse[struct {
			Events []eventmodels.Event `json:"events"`
		}](s.T(), rr)
		s.Require().Len(payload.Events, 1)
		s.Equal(ev.ID, payload.Events[0].ID)
	})

	s.Run("registration succeeds once and conflicts after", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/events/"+ev.ID.String()+"/register", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/events/"+ev.ID.String()+"/register", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rr = testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
		testutil.AssertErrorCode(s.T(), rr, "conflict")
	})
}

func (s *RouterSuite) TestOnboardingFormAndProfile() {
	bearer := s.signIn("visitor@outlook.com", "guest")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/profile/onboarding",
		map[string]string{"first_name": "Vis", "last_name": "Itor", "organization": "ACME"})
	req.Header.Set("Authorization", "Bearer "+bearer)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	req = testutil.NewJSONRequest(s.T(), http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	p := testutil.UnmarshalResponse[identity.Principal](s.T(), rr)
	s.Equal("Vis", p.FirstName)
	s.Equal("ACME", p.Organization)
}

func (s *RouterSuite) TestAdminGuard() {
	s.whitelist.Seed("head@gmail.com", "Head", identity.RoleAdmin)
	adminBearer := s.adminSignIn("head@gmail.com")
	guestBearer := s.signIn("visitor@outlook.com", "guest")

	s.Run("non-admin is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/whitelist", nil)
		req.Header.Set("Authorization", "Bearer "+guestBearer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})

	s.Run("admin manages the whitelist", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/whitelist",
			map[string]string{"email": "helper@gmail.com", "name": "Helper", "role": "attendee"})
		req.Header.Set("Authorization", "Bearer "+adminBearer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		req = testutil.NewJSONRequest(s.T(), http.MethodDelete, "/admin/whitelist/helper@gmail.com", nil)
		req.Header.Set("Authorization", "Bearer "+adminBearer)
		rr = testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("super admin removal is refused", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/admin/whitelist/juniorsblr2024@gmail.com", nil)
		req.Header.Set("Authorization", "Bearer "+adminBearer)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})
}

// adminSignIn completes the first-login admin flow: OTP then password setup.
func (s *RouterSuite) adminSignIn(email string) string {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/email",
		map[string]string{"email": email, "mode": "admin"}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp",
		map[string]string{"email": email, "code": testCode}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/password",
		map[string]string{"email": email, "password": "Str0ng!Pass", "confirm_password": "Str0ng!Pass"}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	result := testutil.UnmarshalResponse[flowmodels.FlowResult](s.T(), rr)
	require.NotEmpty(s.T(), result.Token)
	return result.Token
}

func (s *RouterSuite) TestRejectedEmailSubmission() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/email",
		map[string]string{"email": "someone@gmail.com", "mode": "admin"}))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(s.T(), rr, "unauthorized")
}
