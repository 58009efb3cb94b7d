package models

// OnboardingStep is the screen a principal must be shown next. A principal is
// always in exactly one step; steps form a strict forward order per flow
// variant, with "go back" being navigation only (it never mutates principal
// state).
type OnboardingStep string

const (
	StepEmailEntry             OnboardingStep = "email_entry"
	StepDBCActivation          OnboardingStep = "dbc_activation"
	StepDBCOnboardingForm      OnboardingStep = "dbc_onboarding_form"
	StepGuestSignupForm        OnboardingStep = "guest_signup_form"
	StepOTPVerification        OnboardingStep = "otp_verification"
	StepPasswordSetup          OnboardingStep = "password_setup"
	StepProfilePersonalization OnboardingStep = "profile_personalization"
	StepComplete               OnboardingStep = "complete"
)

func (s OnboardingStep) IsValid() bool {
	switch s {
	case StepEmailEntry, StepDBCActivation, StepDBCOnboardingForm,
		StepGuestSignupForm, StepOTPVerification, StepPasswordSetup,
		StepProfilePersonalization, StepComplete:
		return true
	}
	return false
}

func (s OnboardingStep) String() string { return string(s) }

// Terminal reports whether the step ends the onboarding walk.
func (s OnboardingStep) Terminal() bool { return s == StepComplete }
