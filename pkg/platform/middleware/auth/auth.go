// Package auth guards routes behind bearer-token authentication and exposes
// the authenticated principal to handlers.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "campusgate/pkg/domain"
	"campusgate/pkg/requestcontext"
)

// Claims is what the token validator hands back for an accepted token.
type Claims struct {
	PrincipalID string
	Email       string
	Role        string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

type contextKeyEmail struct{}
type contextKeyRole struct{}

// GetEmail retrieves the authenticated principal's email from the context.
func GetEmail(ctx context.Context) string {
	if email, ok := ctx.Value(contextKeyEmail{}).(string); ok {
		return email
	}
	return ""
}

// GetRole retrieves the authenticated principal's role from the context.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(contextKeyRole{}).(string); ok {
		return role
	}
	return ""
}

// WithClaims injects authenticated-principal claims into a context. Useful
// for handler tests that skip the middleware chain.
func WithClaims(ctx context.Context, pid id.PrincipalID, email, role string) context.Context {
	ctx = requestcontext.WithPrincipalID(ctx, pid)
	ctx = context.WithValue(ctx, contextKeyEmail{}, email)
	return context.WithValue(ctx, contextKeyRole{}, role)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims in the context for downstream handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			pid, err := id.ParsePrincipalID(claims.PrincipalID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := WithClaims(r.Context(), pid, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
