package audit

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusgate/pkg/requestcontext"
)

type capturingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *capturingSink) Publish(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *capturingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPipelineDeliversToStoreAndSinks(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	publisher := NewPublisher(16, log)
	store := NewInMemoryStore()
	sink := &capturingSink{}
	worker := NewWorker(store, publisher.Inbox(), log, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	publisher.Emit(context.Background(), Event{Kind: KindFlowCompleted, SubjectEmail: "a@b.com"})
	publisher.Emit(context.Background(), Event{Kind: KindWhitelistAdded, ActorEmail: "admin@x.com"})

	waitFor(t, func() bool { return len(store.All()) == 2 })
	require.Len(t, sink.all(), 2)

	cancel()
	<-done

	stored := store.All()
	assert.Equal(t, KindFlowCompleted, stored[0].Kind)
	assert.False(t, stored[0].ID.IsZero(), "emit should assign an id")
	assert.False(t, stored[0].Timestamp.IsZero())
}

func TestEmitEnrichesFromRequestContext(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	publisher := NewPublisher(4, log)

	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.7", "agent/1.0")
	ctx = requestcontext.WithDevice(ctx, "Chrome on Linux")
	publisher.Emit(ctx, Event{Kind: KindRegistrationCreated})

	event := <-publisher.Inbox()
	assert.Equal(t, "203.0.113.7", event.ClientIP)
	assert.Equal(t, "agent/1.0", event.UserAgent)
	assert.Equal(t, "Chrome on Linux", event.Device)
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	publisher := NewPublisher(1, log)

	publisher.Emit(context.Background(), Event{Kind: KindFlowCompleted})
	publisher.Emit(context.Background(), Event{Kind: KindFlowCompleted}) // dropped, must not block

	assert.Len(t, publisher.Inbox(), 1)
}

func TestShutdownDrainsBufferedEvents(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	publisher := NewPublisher(16, log)
	store := NewInMemoryStore()
	worker := NewWorker(store, publisher.Inbox(), log)

	for i := 0; i < 5; i++ {
		publisher.Emit(context.Background(), Event{Kind: KindRegistrationCreated})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, worker.Run(ctx), context.Canceled)
	assert.Len(t, store.All(), 5)
}

func TestListByKindNewestFirstWithLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for _, subject := range []string{"one@x.com", "two@x.com", "three@x.com"} {
		require.NoError(t, store.Append(ctx, Event{Kind: KindFlowCompleted, SubjectEmail: subject}))
	}
	require.NoError(t, store.Append(ctx, Event{Kind: KindWhitelistAdded}))

	events, err := store.ListByKind(ctx, KindFlowCompleted, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "three@x.com", events[0].SubjectEmail)
	assert.Equal(t, "two@x.com", events[1].SubjectEmail)
}
