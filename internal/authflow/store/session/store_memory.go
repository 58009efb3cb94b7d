package session

import (
	"context"
	"sync"
	"time"

	"campusgate/internal/authflow/models"
	"campusgate/pkg/platform/sentinel"
)

type memoryEntry struct {
	session   models.FlowSession
	expiresAt time.Time
}

// InMemory holds flow sessions in process memory with lazy expiry. Suitable
// for tests and single-instance local runs.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewInMemory(ttl time.Duration) *InMemory {
	return &InMemory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Put stores a session keyed by its normalized email, replacing any earlier
// session for the same address.
func (s *InMemory) Put(_ context.Context, sess models.FlowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.Email] = memoryEntry{
		session:   sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *InMemory) Get(_ context.Context, email string) (models.FlowSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[email]
	s.mu.RUnlock()
	if !ok {
		return models.FlowSession{}, sentinel.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, email)
		s.mu.Unlock()
		return models.FlowSession{}, sentinel.ErrExpired
	}
	return entry.session, nil
}

func (s *InMemory) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}
