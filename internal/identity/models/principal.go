package models

import (
	"time"

	id "campusgate/pkg/domain"
)

// Principal is a person attempting or holding access.
//
// Invariants:
//   - Email is canonical (trimmed, lowercased) and unique in the directory
//     store
//   - Domain is derived from Email, never stored independently of it
//   - Role is the effective role from the last resolution; callers must not
//     trust it across sessions (whitelist membership can change)
//
// Lifecycle: created implicitly on first successful OTP or password
// verification; mutated by onboarding-completion events; never hard-deleted
// by this core. Deactivation is a whitelist concern (is_active = false).
type Principal struct {
	ID     id.PrincipalID `json:"id"`
	Email  string         `json:"email"`
	Domain string         `json:"domain"`
	Role   Role           `json:"role"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// DBC onboarding form fields.
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
	Contact    string `json:"contact,omitempty"`

	// Guest signup fields.
	Organization string `json:"organization,omitempty"`

	// Personalization (optional enrichment, never a gate).
	Username  string   `json:"username,omitempty"`
	Interests []string `json:"interests,omitempty"`

	// PasswordSet is only meaningful for admins: true once the principal has
	// completed password-credential setup after the OTP first login.
	PasswordSet bool `json:"password_set"`
	// PersonalizationDone records an explicit completion or skip of the
	// personalization step.
	PersonalizationDone bool `json:"personalization_done"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileComplete reports whether a profile record exists with both names
// populated. This is the non-admin terminal condition for onboarding.
func (p Principal) ProfileComplete() bool {
	return p.FirstName != "" && p.LastName != ""
}

// OnboardingDone reports the variant-specific terminal condition. Admins are
// done once their password credential is set; the admin flow collects no
// profile form, so names are optional there. Every other variant is done when
// the profile carries both names.
func (p Principal) OnboardingDone(v FlowVariant) bool {
	if v == VariantAdmin {
		return p.PasswordSet
	}
	return p.ProfileComplete()
}
