package models

import (
	"time"

	identity "campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
)

// FlowState is where a sign-in flow currently sits.
type FlowState string

const (
	// StateAwaitingOTP: a verification code was dispatched.
	StateAwaitingOTP FlowState = "awaiting_otp"
	// StateAwaitingPassword: returning admin signs in with a password.
	StateAwaitingPassword FlowState = "awaiting_password"
	// StatePasswordSetup: first-time admin must set a password.
	StatePasswordSetup FlowState = "password_setup"
	// StateCompleted: flow finished, token issued.
	StateCompleted FlowState = "completed"
)

func (s FlowState) IsValid() bool {
	switch s {
	case StateAwaitingOTP, StateAwaitingPassword, StatePasswordSetup, StateCompleted:
		return true
	}
	return false
}

func (s FlowState) String() string { return string(s) }

// FlowSession is the transient record of one sign-in attempt, keyed by the
// normalized email. A later SubmitEmail for the same address replaces it.
type FlowSession struct {
	Email       string               `json:"email"`
	Mode        identity.FlowMode    `json:"mode"`
	Variant     identity.FlowVariant `json:"variant"`
	State       FlowState            `json:"state"`
	Role        identity.Role        `json:"role"`
	Domain      string               `json:"domain"`
	Whitelisted bool                 `json:"whitelisted"`
	PrincipalID id.PrincipalID       `json:"principal_id,omitempty"`
	ResendCount int                  `json:"resend_count"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// FlowResult is what the orchestrator reports back after each submission.
type FlowResult struct {
	State    FlowState               `json:"state"`
	NextStep identity.OnboardingStep `json:"next_step"`
	Token    string                  `json:"token,omitempty"`
	// PersonalizationOffered is set once, when the flow completes for a
	// principal who has not yet seen the interests picker.
	PersonalizationOffered bool `json:"personalization_offered,omitempty"`
}
