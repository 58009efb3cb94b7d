// Package service applies visibility and registration rules to events. The
// predicates are pure; EventService binds them to the event store, audit
// pipeline, and tracing.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campusgate/internal/audit"
	eventmetrics "campusgate/internal/event/metrics"
	"campusgate/internal/event/models"
	identity "campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
	"campusgate/pkg/platform/sentinel"
	"campusgate/pkg/requestcontext"
)

// Store is the event-store surface the service needs.
type Store interface {
	ListActive(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, eventID id.EventID) (models.Event, error)
	Create(ctx context.Context, ev models.Event) error
	CreateRegistration(ctx context.Context, reg models.Registration) error
	CountRegistrations(ctx context.Context, eventID id.EventID) (int, error)
}

// AuditPublisher is the slice of the audit pipeline the event service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *eventmetrics.Metrics
}

// Option configures the event service.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *eventmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func applyOptions(opts []Option) serviceConfig {
	cfg := serviceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// EventService lists accessible events and records registrations.
type EventService struct {
	store     Store
	publisher AuditPublisher
	logger    *slog.Logger
	metrics   *eventmetrics.Metrics
	tracer    trace.Tracer
}

func NewEventService(store Store, publisher AuditPublisher, opts ...Option) *EventService {
	cfg := applyOptions(opts)
	return &EventService{
		store:     store,
		publisher: publisher,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		tracer:    otel.Tracer("campusgate/event"),
	}
}

// ListAccessible returns the active events the principal may see, in store
// order.
func (s *EventService) ListAccessible(ctx context.Context, p identity.Principal) ([]models.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event.ListAccessible",
		trace.WithAttributes(attribute.String("principal.role", p.Role.String())))
	defer span.End()

	start := time.Now()
	events, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "event listing failed")
	}

	visible := AccessibleEvents(p, events)
	s.metrics.ObserveFilterDuration(time.Since(start).Seconds())
	s.metrics.ObserveVisibility("allowed")
	span.SetAttributes(
		attribute.Int("events.total", len(events)),
		attribute.Int("events.visible", len(visible)),
	)
	return visible, nil
}

// Register records a confirmed registration for the principal. The same
// predicates that gate listing gate registration, plus the time window.
func (s *EventService) Register(ctx context.Context, p identity.Principal, eventID id.EventID) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "event.Register",
		trace.WithAttributes(attribute.String("event.id", eventID.String())))
	defer span.End()

	ev, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveRegistration("not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "event lookup failed")
	}

	now := requestcontext.Now(ctx)
	if !CanAccess(ev, p) {
		s.metrics.ObserveRegistration("forbidden")
		return nil, dErrors.New(dErrors.CodeForbidden, "you do not have access to this event")
	}
	if !CanRegister(ev, p, now) {
		s.metrics.ObserveRegistration("closed")
		return nil, dErrors.New(dErrors.CodeForbidden, "registration for this event is closed")
	}

	reg := models.Registration{
		ID:           id.NewRegistrationID(),
		EventID:      ev.ID,
		PrincipalID:  p.ID,
		Status:       models.RegistrationConfirmed,
		RegisteredAt: now,
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.ObserveRegistration("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "you are already registered for this event")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registration write failed")
	}

	s.metrics.ObserveRegistration("confirmed")
	if s.publisher != nil {
		s.publisher.Emit(ctx, audit.Event{
			Kind:         audit.KindRegistrationCreated,
			ActorEmail:   p.Email,
			SubjectEmail: p.Email,
			Detail:       "event=" + ev.ID.String(),
		})
	}
	s.logger.Info("registration created", "event_id", ev.ID.String(), "principal_id", p.ID.String())
	return &reg, nil
}
