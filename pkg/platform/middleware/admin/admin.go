// Package admin gates management routes behind the admin role.
package admin

import (
	"log/slog"
	"net/http"

	"campusgate/pkg/platform/middleware/auth"
	"campusgate/pkg/requestcontext"
)

// RequireAdminRole rejects authenticated requests whose token does not carry
// the admin role. Must run after auth.RequireAuth.
func RequireAdminRole(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.GetRole(r.Context()) != "admin" {
				logger.WarnContext(r.Context(), "admin route denied",
					"role", auth.GetRole(r.Context()),
					"request_id", requestcontext.RequestID(r.Context()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin role required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
