package models

import (
	dErrors "campusgate/pkg/domain-errors"
)

// Role is the effective access level a principal holds. Exactly one effective
// role holds at any time; it is re-resolved on every authentication event
// because whitelist membership can change between sessions.
type Role string

const (
	// RoleNone is the zero value: access denied, no role granted.
	RoleNone Role = ""
	// RoleAdmin grants the admin dashboard and admin-only events. Admin is
	// only ever granted through the whitelist, never inferred from a domain.
	RoleAdmin Role = "admin"
	// RoleStudent marks whitelisted institutional members.
	RoleStudent Role = "student"
	// RoleAttendee is the default participant role: whitelisted attendees,
	// institutional-domain students, and guests.
	RoleAttendee Role = "attendee"
	// RolePublic is the lowest tier, granted in the public flow to any
	// well-formed email.
	RolePublic Role = "public"
)

// IsValid reports whether the role is one of the granted (non-zero) values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleAttendee, RolePublic:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole validates an externally supplied role string (whitelist rows,
// API payloads).
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return RoleNone, dErrors.Newf(dErrors.CodeInvalidInput, "invalid role %q", s)
	}
	return r, nil
}

// WhitelistableRoles are the roles a whitelist entry may carry.
var WhitelistableRoles = []Role{RoleAdmin, RoleStudent, RoleAttendee}

// Whitelistable reports whether the role may appear on a whitelist entry.
func (r Role) Whitelistable() bool {
	return r == RoleAdmin || r == RoleStudent || r == RoleAttendee
}

// FlowMode names the entry point a principal authenticates through. The mode
// decides which domain rules apply when the email is not whitelisted.
type FlowMode string

const (
	FlowModeStudent FlowMode = "student"
	FlowModeAdmin   FlowMode = "admin"
	FlowModeGuest   FlowMode = "guest"
	FlowModePublic  FlowMode = "public"
)

func (m FlowMode) IsValid() bool {
	switch m {
	case FlowModeStudent, FlowModeAdmin, FlowModeGuest, FlowModePublic:
		return true
	}
	return false
}

func (m FlowMode) String() string { return string(m) }

// ParseFlowMode validates an externally supplied mode string.
func ParseFlowMode(s string) (FlowMode, error) {
	m := FlowMode(s)
	if !m.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid flow mode %q", s)
	}
	return m, nil
}

// Variant maps a mode to the onboarding path its principals walk.
func (m FlowMode) Variant() FlowVariant {
	switch m {
	case FlowModeAdmin:
		return VariantAdmin
	case FlowModeStudent:
		return VariantDBC
	default:
		return VariantGuest
	}
}

// FlowVariant names an onboarding path.
type FlowVariant string

const (
	// VariantDBC is the institutional path: credential activation with a
	// register number, the onboarding form, then OTP on the new personal
	// email.
	VariantDBC FlowVariant = "dbc"
	// VariantGuest is the external-attendee path: signup form then OTP.
	VariantGuest FlowVariant = "guest"
	// VariantAdmin is the whitelisted-admin path: OTP bootstrap then
	// password setup.
	VariantAdmin FlowVariant = "admin"
)

func (v FlowVariant) IsValid() bool {
	return v == VariantDBC || v == VariantGuest || v == VariantAdmin
}

func (v FlowVariant) String() string { return string(v) }
