// Package device turns the raw User-Agent into a short human-readable device
// description ("Chrome on Linux") for audit records.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"campusgate/pkg/requestcontext"
)

// Describe parses the User-Agent and stores the description in the context.
// Must run after the metadata middleware.
func Describe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDevice(r.Context(), Description(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Description renders a User-Agent string as "Browser on OS".
func Description(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case name != "" && os != "":
		return name + " on " + os
	case name != "":
		return name
	case os != "":
		return os
	}
	return "unknown"
}
