package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	eventmodels "campusgate/internal/event/models"
	identity "campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	emailpkg "campusgate/pkg/email"
	"campusgate/pkg/platform/middleware/auth"
	"campusgate/pkg/platform/sentinel"
	"campusgate/pkg/requestcontext"
)

// EventService is the event surface the handlers need.
type EventService interface {
	ListAccessible(ctx context.Context, p identity.Principal) ([]eventmodels.Event, error)
	Register(ctx context.Context, p identity.Principal, eventID id.EventID) (*eventmodels.Registration, error)
}

// PrincipalLoader fetches the authenticated principal's profile.
type PrincipalLoader interface {
	FindByID(ctx context.Context, pid id.PrincipalID) (identity.Principal, error)
}

// EventHandler serves event listing and registration.
type EventHandler struct {
	events     EventService
	principals PrincipalLoader
	logger     *slog.Logger
}

func NewEventHandler(events EventService, principals PrincipalLoader, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, principals: principals, logger: logger}
}

func (h *EventHandler) Register(r chi.Router) {
	r.Get("/events", h.handleList)
	r.Post("/events/{id}/register", h.handleRegister)
}

func (h *EventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	p, err := h.authedPrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.events.ListAccessible(r.Context(), p)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "event listing failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *EventHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.authedPrincipal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.events.Register(r.Context(), p, eventID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "event registration refused",
			"error", err.Error(),
			"event_id", eventID.String(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// authedPrincipal loads the stored profile for the token's principal. The
// token's role claim is authoritative were the profile missing: a freshly
// verified principal may not have completed onboarding yet.
func (h *EventHandler) authedPrincipal(r *http.Request) (identity.Principal, error) {
	ctx := r.Context()
	pid := requestcontext.PrincipalID(ctx)
	if pid.IsZero() {
		return identity.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	p, err := h.principals.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			role, _ := identity.ParseRole(auth.GetRole(ctx))
			return identity.Principal{
				ID:     pid,
				Email:  auth.GetEmail(ctx),
				Domain: emailpkg.Domain(auth.GetEmail(ctx)),
				Role:   role,
			}, nil
		}
		return identity.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile lookup failed")
	}
	return p, nil
}
