// Package service orchestrates sign-in flows: email submission, code
// verification, and password steps, bridging the role resolver, the
// credential provider, and the session store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campusgate/internal/audit"
	flowmetrics "campusgate/internal/authflow/metrics"
	"campusgate/internal/authflow/models"
	"campusgate/internal/authflow/provider"
	identity "campusgate/internal/identity/models"
	identityservice "campusgate/internal/identity/service"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	emailpkg "campusgate/pkg/email"
	"campusgate/pkg/platform/sentinel"
	"campusgate/pkg/requestcontext"
)

// SessionStore holds in-flight flow sessions keyed by normalized email.
type SessionStore interface {
	Put(ctx context.Context, sess models.FlowSession) error
	Get(ctx context.Context, email string) (models.FlowSession, error)
	Delete(ctx context.Context, email string) error
}

// ProfileStore is the slice of the directory store the orchestrator needs.
type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (identity.Principal, error)
	Upsert(ctx context.Context, p identity.Principal) error
}

// TokenIssuer mints the session token handed out when a flow completes.
type TokenIssuer interface {
	Issue(principalID id.PrincipalID, email string, role identity.Role) (string, error)
}

// AuditPublisher is the slice of the audit pipeline the orchestrator needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type orchestratorConfig struct {
	logger  *slog.Logger
	metrics *flowmetrics.Metrics
}

// Option configures the orchestrator.
type Option func(*orchestratorConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *orchestratorConfig) { c.logger = logger }
}

func WithMetrics(m *flowmetrics.Metrics) Option {
	return func(c *orchestratorConfig) { c.metrics = m }
}

// Orchestrator drives a sign-in attempt through its states. One session per
// email: a fresh SubmitEmail replaces whatever was in flight.
type Orchestrator struct {
	resolver   *identityservice.Resolver
	onboarding *identityservice.Onboarding
	profiles   ProfileStore
	sessions   SessionStore
	provider   provider.CredentialProvider
	tokens     TokenIssuer
	publisher  AuditPublisher
	logger     *slog.Logger
	metrics    *flowmetrics.Metrics
	tracer     trace.Tracer
}

func NewOrchestrator(
	resolver *identityservice.Resolver,
	onboarding *identityservice.Onboarding,
	profiles ProfileStore,
	sessions SessionStore,
	credProvider provider.CredentialProvider,
	tokens TokenIssuer,
	publisher AuditPublisher,
	opts ...Option,
) *Orchestrator {
	cfg := orchestratorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Orchestrator{
		resolver:   resolver,
		onboarding: onboarding,
		profiles:   profiles,
		sessions:   sessions,
		provider:   credProvider,
		tokens:     tokens,
		publisher:  publisher,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		tracer:     otel.Tracer("campusgate/authflow"),
	}
}

// SubmitEmail starts (or restarts) a flow. The resolver's verdict is final: a
// rejection discards any in-flight session for the address and propagates.
func (o *Orchestrator) SubmitEmail(ctx context.Context, rawEmail string, mode identity.FlowMode) (models.FlowResult, error) {
	ctx, span := o.tracer.Start(ctx, "authflow.SubmitEmail",
		trace.WithAttributes(attribute.String("flow.mode", mode.String())))
	defer span.End()

	res, err := o.resolver.Resolve(ctx, rawEmail, mode)
	if err != nil {
		if addr, normErr := emailpkg.Normalize(rawEmail); normErr == nil {
			_ = o.sessions.Delete(ctx, addr)
		}
		o.metrics.IncrementRejected(rejectionReason(err))
		return models.FlowResult{}, err
	}

	o.metrics.IncrementStarted(mode.String())
	variant := mode.Variant()

	existing, err := o.findProfile(ctx, res.Email)
	if err != nil {
		return models.FlowResult{}, err
	}

	now := requestcontext.Now(ctx)
	sess := models.FlowSession{
		Email:       res.Email,
		Mode:        mode,
		Variant:     variant,
		Role:        res.Role,
		Domain:      res.Domain,
		Whitelisted: res.Whitelisted,
		PrincipalID: existing.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Returning admin with a password signs in directly; everyone else gets
	// a verification code.
	if variant == identity.VariantAdmin && existing.PasswordSet {
		sess.State = models.StateAwaitingPassword
		if err := o.sessions.Put(ctx, sess); err != nil {
			return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
		}
		return models.FlowResult{State: sess.State, NextStep: identity.StepComplete}, nil
	}

	sess.State = models.StateAwaitingOTP
	// Stored before dispatch so a provider outage leaves a session that
	// ResendCode can retry against.
	if err := o.sessions.Put(ctx, sess); err != nil {
		return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
	}

	allowCreate := res.Whitelisted || existing.ID.IsZero()
	if err := o.provider.SendVerificationCode(ctx, res.Email, allowCreate); err != nil {
		return models.FlowResult{}, providerError(err, "could not send verification code")
	}

	o.logger.Info("verification code dispatched", "mode", mode.String(), "domain", res.Domain)
	return models.FlowResult{
		State:    sess.State,
		NextStep: identity.StepOTPVerification,
	}, nil
}

// SubmitOTP verifies a code. Malformed codes are rejected locally; a wrong
// code from the provider leaves the session at awaiting_otp for another try.
func (o *Orchestrator) SubmitOTP(ctx context.Context, rawEmail, code string) (models.FlowResult, error) {
	ctx, span := o.tracer.Start(ctx, "authflow.SubmitOTP")
	defer span.End()

	if err := validateCodeFormat(code); err != nil {
		return models.FlowResult{}, err
	}

	addr, err := emailpkg.Normalize(rawEmail)
	if err != nil {
		return models.FlowResult{}, err
	}
	sess, err := o.loadSession(ctx, addr)
	if err != nil {
		return models.FlowResult{}, err
	}
	if sess.State != models.StateAwaitingOTP {
		return models.FlowResult{}, dErrors.New(dErrors.CodeInvalidInput, "no verification pending for this sign-in")
	}

	pid, err := o.provider.VerifyCode(ctx, addr, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
			o.metrics.IncrementRejected("wrong_code")
			return models.FlowResult{}, dErrors.New(dErrors.CodeUnauthorized, "incorrect verification code")
		}
		return models.FlowResult{}, providerError(err, "could not verify code")
	}

	now := requestcontext.Now(ctx)
	skeleton := identity.Principal{
		ID:        pid,
		Email:     addr,
		Domain:    sess.Domain,
		Role:      sess.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Admins get no onboarding form, so their first verification derives
	// names from the address rather than leaving the profile blank. Other
	// variants keep empty names here: the form still has to run, and names
	// are what marks it done. Never overwrites names already on record.
	if sess.Variant == identity.VariantAdmin {
		if existing, err := o.findProfile(ctx, addr); err != nil {
			return models.FlowResult{}, err
		} else if !existing.ProfileComplete() {
			skeleton.FirstName, skeleton.LastName = emailpkg.DeriveNameFromEmail(addr)
		}
	}
	if err := o.profiles.Upsert(ctx, skeleton); err != nil {
		return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile write failed")
	}

	profile, err := o.findProfile(ctx, addr)
	if err != nil {
		return models.FlowResult{}, err
	}
	sess.PrincipalID = pid
	sess.UpdatedAt = now

	next := o.onboarding.NextStep(profile, sess.Variant)
	if sess.Variant == identity.VariantAdmin && !profile.PasswordSet {
		sess.State = models.StatePasswordSetup
		if err := o.sessions.Put(ctx, sess); err != nil {
			return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
		}
		return models.FlowResult{State: sess.State, NextStep: identity.StepPasswordSetup}, nil
	}

	return o.complete(ctx, sess, profile, next)
}

// SubmitPassword finishes an admin flow: setting the first password after OTP
// verification, or signing a returning admin in.
func (o *Orchestrator) SubmitPassword(ctx context.Context, rawEmail, password, confirm string) (models.FlowResult, error) {
	ctx, span := o.tracer.Start(ctx, "authflow.SubmitPassword")
	defer span.End()

	addr, err := emailpkg.Normalize(rawEmail)
	if err != nil {
		return models.FlowResult{}, err
	}
	sess, err := o.loadSession(ctx, addr)
	if err != nil {
		return models.FlowResult{}, err
	}

	switch sess.State {
	case models.StatePasswordSetup:
		if password != confirm {
			return models.FlowResult{}, dErrors.New(dErrors.CodeInvalidInput, "passwords do not match")
		}
		if err := validatePassword(password, true); err != nil {
			return models.FlowResult{}, err
		}
		if err := o.provider.UpdateCredential(ctx, sess.PrincipalID, password); err != nil {
			return models.FlowResult{}, providerError(err, "could not set password")
		}

		now := requestcontext.Now(ctx)
		if err := o.profiles.Upsert(ctx, identity.Principal{
			ID:          sess.PrincipalID,
			Email:       addr,
			Domain:      sess.Domain,
			Role:        sess.Role,
			PasswordSet: true,
			UpdatedAt:   now,
		}); err != nil {
			return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile write failed")
		}

		profile, err := o.findProfile(ctx, addr)
		if err != nil {
			return models.FlowResult{}, err
		}
		return o.complete(ctx, sess, profile, o.onboarding.NextStep(profile, sess.Variant))

	case models.StateAwaitingPassword:
		if err := validatePassword(password, false); err != nil {
			return models.FlowResult{}, err
		}
		pid, err := o.provider.SignInWithPassword(ctx, addr, password)
		if err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
				o.metrics.IncrementRejected("wrong_password")
				return models.FlowResult{}, dErrors.New(dErrors.CodeUnauthorized, "incorrect email or password")
			}
			return models.FlowResult{}, providerError(err, "could not sign in")
		}
		sess.PrincipalID = pid

		profile, err := o.findProfile(ctx, addr)
		if err != nil {
			return models.FlowResult{}, err
		}
		return o.complete(ctx, sess, profile, o.onboarding.NextStep(profile, sess.Variant))

	default:
		return models.FlowResult{}, dErrors.New(dErrors.CodeInvalidInput, "no password step pending for this sign-in")
	}
}

// ResendCode re-dispatches the verification code for an awaiting_otp session.
// The count is tracked and logged; no cap is enforced here, throttling lives
// at the transport edge.
func (o *Orchestrator) ResendCode(ctx context.Context, rawEmail string) (models.FlowResult, error) {
	ctx, span := o.tracer.Start(ctx, "authflow.ResendCode")
	defer span.End()

	addr, err := emailpkg.Normalize(rawEmail)
	if err != nil {
		return models.FlowResult{}, err
	}
	sess, err := o.loadSession(ctx, addr)
	if err != nil {
		return models.FlowResult{}, err
	}
	if sess.State != models.StateAwaitingOTP {
		return models.FlowResult{}, dErrors.New(dErrors.CodeInvalidInput, "no verification pending for this sign-in")
	}

	sess.ResendCount++
	sess.UpdatedAt = requestcontext.Now(ctx)
	if err := o.sessions.Put(ctx, sess); err != nil {
		return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
	}

	allowCreate := sess.Whitelisted || sess.PrincipalID.IsZero()
	if err := o.provider.SendVerificationCode(ctx, addr, allowCreate); err != nil {
		return models.FlowResult{}, providerError(err, "could not resend verification code")
	}

	o.metrics.IncrementResend()
	o.logger.Info("verification code resent", "resend_count", sess.ResendCount)
	return models.FlowResult{State: sess.State, NextStep: identity.StepOTPVerification}, nil
}

func (o *Orchestrator) complete(ctx context.Context, sess models.FlowSession, profile identity.Principal, next identity.OnboardingStep) (models.FlowResult, error) {
	sess.State = models.StateCompleted
	sess.UpdatedAt = requestcontext.Now(ctx)
	if err := o.sessions.Put(ctx, sess); err != nil {
		return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
	}

	signed, err := o.tokens.Issue(sess.PrincipalID, sess.Email, sess.Role)
	if err != nil {
		return models.FlowResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "token issuance failed")
	}

	o.metrics.IncrementCompleted(sess.Role.String())
	if o.publisher != nil {
		o.publisher.Emit(ctx, audit.Event{
			Kind:         audit.KindFlowCompleted,
			ActorEmail:   sess.Email,
			SubjectEmail: sess.Email,
			Detail:       "mode=" + sess.Mode.String(),
		})
	}
	o.logger.Info("authentication flow completed",
		"mode", sess.Mode.String(), "role", sess.Role.String(), "next_step", next.String())

	return models.FlowResult{
		State:                  sess.State,
		NextStep:               next,
		Token:                  signed,
		PersonalizationOffered: o.onboarding.OfferPersonalization(profile, sess.Variant),
	}, nil
}

func (o *Orchestrator) loadSession(ctx context.Context, addr string) (models.FlowSession, error) {
	sess, err := o.sessions.Get(ctx, addr)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return models.FlowSession{}, dErrors.New(dErrors.CodeUnauthorized, "no active sign-in for this email")
	case errors.Is(err, sentinel.ErrExpired):
		return models.FlowSession{}, dErrors.New(dErrors.CodeUnauthorized, "sign-in session has expired")
	default:
		return models.FlowSession{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store failed")
	}
}

func (o *Orchestrator) findProfile(ctx context.Context, addr string) (identity.Principal, error) {
	profile, err := o.profiles.FindByEmail(ctx, addr)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return identity.Principal{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile lookup failed")
	}
	return profile, nil
}

func providerError(err error, msg string) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
}

func rejectionReason(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput:
		return "invalid_email"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeUnavailable:
		return "store_error"
	default:
		return "other"
	}
}
