package profile

import (
	"context"
	"strings"
	"sync"

	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

// InMemory keeps principal profiles in mutex-guarded maps keyed by ID with an
// email index.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.PrincipalID]models.Principal
	byEmail map[string]id.PrincipalID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.PrincipalID]models.Principal),
		byEmail: make(map[string]id.PrincipalID),
	}
}

func (s *InMemory) FindByID(_ context.Context, pid id.PrincipalID) (models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[pid]; ok {
		return p, nil
	}
	return models.Principal{}, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (models.Principal, error) {
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pid, ok := s.byEmail[email]; ok {
		return s.byID[pid], nil
	}
	return models.Principal{}, sentinel.ErrNotFound
}

// Upsert merges the profile by ID in a single atomic write. Zero-valued
// fields on the incoming record never clobber populated stored fields, which
// is what makes interrupted onboarding resumable.
func (s *InMemory) Upsert(_ context.Context, p models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Email = strings.ToLower(p.Email)
	if existing, ok := s.byID[p.ID]; ok {
		p = mergeProfile(existing, p)
	}
	s.byID[p.ID] = p
	s.byEmail[p.Email] = p.ID
	return nil
}

func mergeProfile(existing, incoming models.Principal) models.Principal {
	merged := incoming
	if merged.FirstName == "" {
		merged.FirstName = existing.FirstName
	}
	if merged.LastName == "" {
		merged.LastName = existing.LastName
	}
	if merged.Department == "" {
		merged.Department = existing.Department
	}
	if merged.Year == "" {
		merged.Year = existing.Year
	}
	if merged.Contact == "" {
		merged.Contact = existing.Contact
	}
	if merged.Organization == "" {
		merged.Organization = existing.Organization
	}
	if merged.Username == "" {
		merged.Username = existing.Username
	}
	if len(merged.Interests) == 0 {
		merged.Interests = existing.Interests
	}
	if merged.Role == models.RoleNone {
		merged.Role = existing.Role
	}
	merged.PasswordSet = merged.PasswordSet || existing.PasswordSet
	merged.PersonalizationDone = merged.PersonalizationDone || existing.PersonalizationDone
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = existing.CreatedAt
	}
	return merged
}
