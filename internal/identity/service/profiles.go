package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/platform/sentinel"
	platformstrings "campusgate/pkg/platform/strings"
	"campusgate/pkg/requestcontext"
)

// Profiles applies onboarding completion events to principal records. Each
// write is a single atomic upsert keyed by principal id, so an abandoned form
// never leaves the directory store half-written.
type Profiles struct {
	store  ProfileStore
	logger *slog.Logger
}

func NewProfiles(store ProfileStore, opts ...Option) *Profiles {
	cfg := applyOptions(opts)
	return &Profiles{store: store, logger: cfg.logger}
}

// Get loads a principal by id.
func (s *Profiles) Get(ctx context.Context, pid id.PrincipalID) (models.Principal, error) {
	p, err := s.store.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Principal{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile lookup failed")
	}
	return p, nil
}

// OnboardingForm carries the personal-details step of the DBC and guest
// variants. Zero-valued optional fields are left untouched by the merge.
type OnboardingForm struct {
	FirstName    string
	LastName     string
	Department   string
	Year         string
	Contact      string
	Organization string
}

// CompleteOnboardingForm records the personal-details step. First and last
// name are what flip ProfileComplete, so both are required here.
func (s *Profiles) CompleteOnboardingForm(ctx context.Context, pid id.PrincipalID, form OnboardingForm) (models.Principal, error) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	if form.FirstName == "" || form.LastName == "" {
		return models.Principal{}, dErrors.New(dErrors.CodeInvalidInput, "first and last name are required")
	}

	p, err := s.Get(ctx, pid)
	if err != nil {
		return models.Principal{}, err
	}

	p.FirstName = form.FirstName
	p.LastName = form.LastName
	p.Department = strings.TrimSpace(form.Department)
	p.Year = strings.TrimSpace(form.Year)
	p.Contact = strings.TrimSpace(form.Contact)
	p.Organization = strings.TrimSpace(form.Organization)
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Upsert(ctx, p); err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile update failed")
	}
	s.logger.Info("onboarding form completed", "principal_id", pid.String())
	return p, nil
}

// CompletePersonalization records username and interests. Optional
// enrichment: leaving both empty is allowed.
func (s *Profiles) CompletePersonalization(ctx context.Context, pid id.PrincipalID, username string, interests []string) (models.Principal, error) {
	p, err := s.Get(ctx, pid)
	if err != nil {
		return models.Principal{}, err
	}

	p.Username = strings.TrimSpace(username)
	p.Interests = platformstrings.DedupeAndTrim(interests)
	p.PersonalizationDone = true
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Upsert(ctx, p); err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile update failed")
	}
	return p, nil
}

// SkipPersonalization marks the optional step as handled without enrichment.
// Skipping never blocks completion.
func (s *Profiles) SkipPersonalization(ctx context.Context, pid id.PrincipalID) (models.Principal, error) {
	p, err := s.Get(ctx, pid)
	if err != nil {
		return models.Principal{}, err
	}

	p.PersonalizationDone = true
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Upsert(ctx, p); err != nil {
		return models.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile update failed")
	}
	return p, nil
}
