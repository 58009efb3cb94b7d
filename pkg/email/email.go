// Package email holds the address helpers the access-control core leans on:
// canonicalization, domain extraction, and name derivation for profile
// skeletons created on first login.
package email

import (
	"strings"
	"unicode"

	dErrors "campusgate/pkg/domain-errors"
)

// Normalize canonicalizes an address: trimmed, lowercased, and structurally
// checked (exactly one '@' with non-empty local part and domain). The
// canonical form is the unique key into the directory store.
func Normalize(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	at := strings.IndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 || strings.IndexByte(addr[at+1:], '@') != -1 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid email address")
	}
	if !strings.Contains(addr[at+1:], ".") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid email domain")
	}
	return addr, nil
}

// Domain returns the lowercased part after '@', or "" when the address has
// no domain. The domain is the organizational affiliation signal used by the
// role resolver and the event visibility filter.
func Domain(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr[at+1:]))
}

// DeriveNameFromEmail guesses a first/last name pair from the local part, for
// profiles whose flow never collects names through a form. "jane.doe@x.edu"
// becomes ("Jane", "Doe"); unsplittable local parts fall back to "User".
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
