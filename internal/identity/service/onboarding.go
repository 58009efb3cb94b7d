package service

import (
	"campusgate/internal/identity/models"
)

// Onboarding determines, for an authenticated principal, which
// profile-completion step comes next. It is a pure function of profile state;
// transitions happen because a completion event mutated the profile, never
// because a screen was shown.
//
// ProfilePersonalization is deliberately absent here: it is optional
// enrichment, not a gate. The flow orchestrator offers it once, right after
// the step that completes the profile, and a returning principal with a
// complete profile always lands on StepComplete (onboarding screens are never
// re-shown to completed profiles).
type Onboarding struct{}

func NewOnboarding() *Onboarding {
	return &Onboarding{}
}

// NextStep returns the step the principal must be shown next.
//
// Terminal check first: a principal who satisfies the variant's completion
// condition gets StepComplete regardless of variant, and repeated calls keep
// returning StepComplete.
func (o *Onboarding) NextStep(p models.Principal, variant models.FlowVariant) models.OnboardingStep {
	if p.OnboardingDone(variant) {
		return models.StepComplete
	}

	switch variant {
	case models.VariantAdmin:
		// EmailEntry -> OTPVerification (first login) -> PasswordSetup ->
		// Complete. A returning admin with a password never reaches here;
		// the orchestrator routes them to password login.
		if p.ID.IsZero() {
			return models.StepOTPVerification
		}
		return models.StepPasswordSetup
	case models.VariantDBC:
		// EmailEntry -> DBCActivation (register number + temp password) ->
		// DBCOnboardingForm -> OTPVerification -> Complete.
		if p.ID.IsZero() {
			return models.StepDBCActivation
		}
		return models.StepDBCOnboardingForm
	case models.VariantGuest:
		// EmailEntry -> GuestSignupForm -> OTPVerification -> Complete.
		return models.StepGuestSignupForm
	default:
		return models.StepEmailEntry
	}
}

// OfferPersonalization reports whether the optional personalization screen
// should be offered after onboarding completes. Offered once; both completing
// and skipping it set PersonalizationDone.
func (o *Onboarding) OfferPersonalization(p models.Principal, variant models.FlowVariant) bool {
	return variant != models.VariantAdmin && p.OnboardingDone(variant) && !p.PersonalizationDone
}
