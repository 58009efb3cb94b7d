package audit

import (
	"context"
	"log/slog"
)

// Store is the persistence surface the worker writes to.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByKind(ctx context.Context, kind Kind, limit int) ([]Event, error)
}

// Sink is an optional secondary destination (e.g. the Kafka mirror). Sinks
// are best-effort; a sink failure never stops persistence.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Worker consumes audit events from the publisher and persists them. It runs
// until its context is cancelled, then drains whatever is already buffered.
type Worker struct {
	store  Store
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{store: store, inbox: inbox, sinks: sinks, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("audit append failed", "kind", string(event.Kind), "error", err)
	}
	for _, sink := range w.sinks {
		sink.Publish(ctx, event)
	}
}

// drain flushes buffered events with a background context so shutdown does
// not lose what was already accepted.
func (w *Worker) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.handle(ctx, event)
		default:
			return
		}
	}
}
