package audit

import (
	"context"
	"log/slog"

	id "campusgate/pkg/domain"
	"campusgate/pkg/requestcontext"
)

// Publisher accepts events from domain code and hands them to the worker via
// a buffered channel. Emission never blocks the caller: when the buffer is
// full the event is dropped and counted, because no login or registration
// should fail over an audit backlog.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher builds a publisher with the given buffer size and the channel
// the worker consumes.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Emit enriches the event with request-scoped metadata and queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID.IsZero() {
		event.ID = id.NewAuditEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "kind", string(event.Kind))
	}
}
