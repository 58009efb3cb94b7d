package service

import (
	"unicode"

	dErrors "campusgate/pkg/domain-errors"
)

const minPasswordLength = 8

// validatePassword enforces the general policy, and the stricter character
// classes for admin password setup. Runs before any provider call.
func validatePassword(password string, adminSetup bool) error {
	if len(password) < minPasswordLength {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"password must be at least %d characters long", minPasswordLength)
	}
	if !adminSetup {
		return nil
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return dErrors.New(dErrors.CodeInvalidInput,
			"admin password must contain an uppercase letter, a lowercase letter, a digit, and a special character")
	}
	return nil
}

// validateCodeFormat rejects anything that is not exactly six digits so
// obviously malformed codes never reach the credential provider.
func validateCodeFormat(code string) error {
	if len(code) != 6 {
		return dErrors.New(dErrors.CodeInvalidInput, "verification code must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeInvalidInput, "verification code must be 6 digits")
		}
	}
	return nil
}
