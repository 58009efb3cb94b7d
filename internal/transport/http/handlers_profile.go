package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "campusgate/internal/identity/models"
	identityservice "campusgate/internal/identity/service"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/requestcontext"
)

// ProfileService is the profile surface the handlers need.
type ProfileService interface {
	Get(ctx context.Context, pid id.PrincipalID) (identity.Principal, error)
	CompleteOnboardingForm(ctx context.Context, pid id.PrincipalID, form identityservice.OnboardingForm) (identity.Principal, error)
	CompletePersonalization(ctx context.Context, pid id.PrincipalID, username string, interests []string) (identity.Principal, error)
	SkipPersonalization(ctx context.Context, pid id.PrincipalID) (identity.Principal, error)
}

// ProfileHandler serves the authenticated principal's own profile.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/profile", h.handleGet)
	r.Post("/profile/onboarding", h.handleOnboardingForm)
	r.Post("/profile/personalization", h.handlePersonalization)
	r.Post("/profile/personalization/skip", h.handleSkipPersonalization)
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	pid, err := authedPrincipalID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Get(r.Context(), pid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type onboardingFormRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	Contact      string `json:"contact"`
	Organization string `json:"organization"`
}

func (h *ProfileHandler) handleOnboardingForm(w http.ResponseWriter, r *http.Request) {
	pid, err := authedPrincipalID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req onboardingFormRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.CompleteOnboardingForm(r.Context(), pid, identityservice.OnboardingForm{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Department:   req.Department,
		Year:         req.Year,
		Contact:      req.Contact,
		Organization: req.Organization,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "onboarding form rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type personalizationRequest struct {
	Username  string   `json:"username"`
	Interests []string `json:"interests"`
}

func (h *ProfileHandler) handlePersonalization(w http.ResponseWriter, r *http.Request) {
	pid, err := authedPrincipalID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req personalizationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.CompletePersonalization(r.Context(), pid, req.Username, req.Interests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) handleSkipPersonalization(w http.ResponseWriter, r *http.Request) {
	pid, err := authedPrincipalID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.SkipPersonalization(r.Context(), pid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func authedPrincipalID(r *http.Request) (id.PrincipalID, error) {
	pid := requestcontext.PrincipalID(r.Context())
	if pid.IsZero() {
		return id.PrincipalID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return pid, nil
}
