package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"campusgate/internal/audit"
	identitymetrics "campusgate/internal/identity/metrics"
	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	emailpkg "campusgate/pkg/email"
	"campusgate/pkg/platform/sentinel"
	"campusgate/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit pipeline identity services need.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Whitelist manages authorization records. One designated super-admin email
// is permanently protected: it can never be removed or demoted here.
type Whitelist struct {
	store           WhitelistStore
	superAdminEmail string
	publisher       AuditPublisher
	logger          *slog.Logger
	metrics         *identitymetrics.Metrics
}

func NewWhitelist(store WhitelistStore, superAdminEmail string, publisher AuditPublisher, opts ...Option) *Whitelist {
	cfg := applyOptions(opts)
	return &Whitelist{
		store:           store,
		superAdminEmail: strings.ToLower(strings.TrimSpace(superAdminEmail)),
		publisher:       publisher,
		logger:          cfg.logger,
		metrics:         cfg.metrics,
	}
}

// Add creates an active entry. A second active entry for the same email is a
// reported conflict, never a crash; the directory store itself tolerates the
// duplicates that slipped in before this check existed.
func (s *Whitelist) Add(ctx context.Context, actorEmail, entryEmail, name string, role models.Role) (*models.WhitelistEntry, error) {
	addr, err := emailpkg.Normalize(entryEmail)
	if err != nil {
		return nil, err
	}

	if s.isSuperAdmin(addr) && role != models.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "the super admin cannot be demoted")
	}

	if _, err := s.store.LookupActive(ctx, addr); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email is already whitelisted")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist lookup failed")
	}

	entry, err := models.NewWhitelistEntry(id.NewWhitelistEntryID(), addr, name, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist write failed")
	}

	s.metrics.IncrementWhitelistAdd()
	s.emit(ctx, audit.KindWhitelistAdded, actorEmail, addr, "role="+role.String())
	s.logger.Info("whitelist entry added", "email", addr, "role", role.String())
	return entry, nil
}

// Remove deactivates every active entry for the email. The super admin is
// untouchable.
func (s *Whitelist) Remove(ctx context.Context, actorEmail, entryEmail string) error {
	addr, err := emailpkg.Normalize(entryEmail)
	if err != nil {
		return err
	}

	if s.isSuperAdmin(addr) {
		return dErrors.New(dErrors.CodeForbidden, "the super admin cannot be removed from the whitelist")
	}

	if err := s.store.Deactivate(ctx, addr); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "email is not whitelisted")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist write failed")
	}

	s.metrics.IncrementWhitelistRemoval()
	s.emit(ctx, audit.KindWhitelistRemoved, actorEmail, addr, "")
	s.logger.Info("whitelist entry removed", "email", addr)
	return nil
}

// List returns all entries, active first.
func (s *Whitelist) List(ctx context.Context) ([]models.WhitelistEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist list failed")
	}
	return entries, nil
}

func (s *Whitelist) isSuperAdmin(addr string) bool {
	return s.superAdminEmail != "" && addr == s.superAdminEmail
}

func (s *Whitelist) emit(ctx context.Context, kind audit.Kind, actor, subject, detail string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(ctx, audit.Event{
		Kind:         kind,
		ActorEmail:   actor,
		SubjectEmail: subject,
		Detail:       detail,
	})
}
