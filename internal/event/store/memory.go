package store

import (
	"context"
	"sync"
	"time"

	"campusgate/internal/event/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

// InMemory keeps events and registrations in process memory. It backs unit
// tests and provider-free local runs.
type InMemory struct {
	mu            sync.RWMutex
	events        map[id.EventID]models.Event
	order         []id.EventID
	registrations map[id.RegistrationID]models.Registration
}

func NewInMemory() *InMemory {
	return &InMemory{
		events:        make(map[id.EventID]models.Event),
		registrations: make(map[id.RegistrationID]models.Registration),
	}
}

func (s *InMemory) Create(_ context.Context, ev models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; ok {
		return sentinel.ErrConflict
	}
	s.events[ev.ID] = ev
	s.order = append(s.order, ev.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[eventID]
	if !ok {
		return models.Event{}, sentinel.ErrNotFound
	}
	return ev, nil
}

// ListActive returns active events in insertion order.
func (s *InMemory) ListActive(_ context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, 0, len(s.order))
	for _, evID := range s.order {
		if ev := s.events[evID]; ev.IsActive() {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, eventID id.EventID, status models.EventStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	ev.Status = status
	ev.UpdatedAt = now
	s.events[eventID] = ev
	return nil
}

func (s *InMemory) CreateRegistration(_ context.Context, reg models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.registrations {
		if existing.EventID == reg.EventID && existing.PrincipalID == reg.PrincipalID {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.registrations[reg.ID] = reg
	return nil
}

func (s *InMemory) CountRegistrations(_ context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.Status == models.RegistrationConfirmed {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) ListRegistrationsByPrincipal(_ context.Context, principalID id.PrincipalID) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Registration
	for _, reg := range s.registrations {
		if reg.PrincipalID == principalID {
			out = append(out, reg)
		}
	}
	return out, nil
}
