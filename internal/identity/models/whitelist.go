package models

import (
	"strings"
	"time"

	id "campusgate/pkg/domain"
	dErrors "campusgate/pkg/domain-errors"
)

// WhitelistEntry is an authorization record: email to role, with an active
// flag instead of deletion.
//
// The directory store may hold duplicate rows for one email (a data-quality
// fact this core tolerates): lookups treat any active match as authoritative
// and never error on duplicates.
type WhitelistEntry struct {
	ID        id.WhitelistEntryID `json:"id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Role      Role                `json:"role"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewWhitelistEntry validates and builds an active entry.
func NewWhitelistEntry(entryID id.WhitelistEntryID, email, name string, role Role, now time.Time) (*WhitelistEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "whitelist email is required")
	}
	if !role.Whitelistable() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "role %q cannot be whitelisted", role)
	}
	return &WhitelistEntry{
		ID:        entryID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
