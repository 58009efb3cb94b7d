package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	identitymetrics "campusgate/internal/identity/metrics"
	"campusgate/internal/identity/models"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/email"
	"campusgate/pkg/platform/sentinel"
)

// Resolver decides the effective role for an email address at authentication
// time. The whitelist strictly overrides any domain-derived role, so the
// lookup happens before any mode-specific branching.
type Resolver struct {
	whitelist           WhitelistStore
	institutionalDomain string
	logger              *slog.Logger
	metrics             *identitymetrics.Metrics
}

// Resolution is the authoritative answer for one authentication event. It is
// never cached across sessions; whitelist membership can change between them.
type Resolution struct {
	Email       string
	Domain      string
	Role        models.Role
	Whitelisted bool
}

func NewResolver(whitelist WhitelistStore, institutionalDomain string, opts ...Option) *Resolver {
	cfg := applyOptions(opts)
	return &Resolver{
		whitelist:           whitelist,
		institutionalDomain: institutionalDomain,
		logger:              cfg.logger,
		metrics:             cfg.metrics,
	}
}

// Resolve normalizes the email, consults the whitelist, and falls back to
// domain rules per flow mode.
//
// Order matters: a whitelisted role wins regardless of mode or domain.
func (r *Resolver) Resolve(ctx context.Context, rawEmail string, mode models.FlowMode) (Resolution, error) {
	start := time.Now()

	addr, err := email.Normalize(rawEmail)
	if err != nil {
		r.metrics.ObserveResolution("invalid", start)
		return Resolution{}, err
	}
	if !mode.IsValid() {
		r.metrics.ObserveResolution("invalid", start)
		return Resolution{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid flow mode %q", mode)
	}

	res := Resolution{Email: addr, Domain: email.Domain(addr)}

	entry, err := r.whitelist.LookupActive(ctx, addr)
	switch {
	case err == nil:
		res.Role = entry.Role
		res.Whitelisted = true
		r.metrics.ObserveResolution(entry.Role.String(), start)
		return res, nil
	case errors.Is(err, sentinel.ErrNotFound):
		// Not whitelisted; fall through to domain rules.
	default:
		r.metrics.ObserveResolution("error", start)
		return Resolution{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist lookup failed")
	}

	switch mode {
	case models.FlowModeAdmin:
		// Admin access requires whitelisting, never domain inference.
		r.metrics.ObserveResolution("denied", start)
		return Resolution{}, dErrors.New(dErrors.CodeUnauthorized,
			"this email is not authorized for admin access")
	case models.FlowModeStudent:
		if res.Domain != r.institutionalDomain {
			r.metrics.ObserveResolution("denied", start)
			return Resolution{}, dErrors.Newf(dErrors.CodeUnauthorized,
				"student sign-in requires a %s email address", r.institutionalDomain)
		}
		res.Role = models.RoleAttendee
	case models.FlowModeGuest:
		// Any well-formed email is acceptable; the domain is recorded for
		// later visibility filtering.
		res.Role = models.RoleAttendee
	case models.FlowModePublic:
		res.Role = models.RolePublic
	}

	r.logger.Debug("role resolved from domain rules",
		"domain", res.Domain, "mode", mode.String(), "role", res.Role.String())
	r.metrics.ObserveResolution(res.Role.String(), start)
	return res, nil
}
