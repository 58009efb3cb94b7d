// Package provider abstracts the external credential service that dispatches
// verification codes and holds passwords.
package provider

import (
	"context"

	id "campusgate/pkg/domain"
)

// CredentialProvider is the outbound port for OTP dispatch and credential
// management. Implementations: the HTTP client against the hosted auth
// service, and an in-memory provider for tests and local runs.
type CredentialProvider interface {
	// SendVerificationCode dispatches a one-time code. allowCreate permits
	// the provider to create an account for an unknown email.
	SendVerificationCode(ctx context.Context, email string, allowCreate bool) error
	// VerifyCode checks a code and returns the provider-side principal ID.
	// A wrong code returns sentinel.ErrInvalidState.
	VerifyCode(ctx context.Context, email, code string) (id.PrincipalID, error)
	// UpdateCredential sets or replaces the principal's password.
	UpdateCredential(ctx context.Context, pid id.PrincipalID, password string) error
	// SignInWithPassword authenticates a returning principal.
	SignInWithPassword(ctx context.Context, email, password string) (id.PrincipalID, error)
}
