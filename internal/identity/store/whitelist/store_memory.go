package whitelist

import (
	"context"
	"strings"
	"sync"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

// InMemory keeps whitelist entries in a mutex-guarded slice. It intentionally
// allows duplicate rows per email, matching the tolerance the lookup contract
// requires.
type InMemory struct {
	mu      sync.RWMutex
	entries []models.WhitelistEntry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// LookupActive returns any active entry for the email. Duplicates are not an
// error; the first active match wins.
func (s *InMemory) LookupActive(_ context.Context, email string) (*models.WhitelistEntry, error) {
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].Email == email && s.entries[i].IsActive {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Create appends an entry. It does not enforce uniqueness; the service layer
// decides whether a duplicate active entry is a conflict.
func (s *InMemory) Create(_ context.Context, entry *models.WhitelistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// Deactivate flips is_active off for every row matching the email. Missing
// email reports ErrNotFound.
func (s *InMemory) Deactivate(_ context.Context, email string) error {
	email = strings.ToLower(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.entries {
		if s.entries[i].Email == email && s.entries[i].IsActive {
			s.entries[i].IsActive = false
			found = true
		}
	}
	if !found {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns all entries, active first, newest within each group last.
func (s *InMemory) List(_ context.Context) ([]models.WhitelistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WhitelistEntry, 0, len(s.entries))
	for i := range s.entries {
		if s.entries[i].IsActive {
			out = append(out, s.entries[i])
		}
	}
	for i := range s.entries {
		if !s.entries[i].IsActive {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

// Seed inserts an active entry directly; test and bootstrap helper.
func (s *InMemory) Seed(email, name string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, models.WhitelistEntry{
		ID:       id.NewWhitelistEntryID(),
		Email:    strings.ToLower(email),
		Name:     name,
		Role:     role,
		IsActive: true,
	})
}
