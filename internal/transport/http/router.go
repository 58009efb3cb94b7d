package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"campusgate/internal/ratelimit"
	"campusgate/pkg/platform/middleware/admin"
	"campusgate/pkg/platform/middleware/auth"
	"campusgate/pkg/platform/middleware/device"
	"campusgate/pkg/platform/middleware/metadata"
	"campusgate/pkg/platform/middleware/requesttime"
)

// HealthChecker reports the health of one dependency.
type HealthChecker func(ctx context.Context) error

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	Auth      *AuthHandler
	Events    *EventHandler
	Profile   *ProfileHandler
	Whitelist *WhitelistHandler

	TokenValidator auth.TokenValidator
	Logger         *slog.Logger

	// AuthLimiter, when set, throttles the public sign-in endpoints.
	AuthLimiter *ratelimit.Middleware

	AllowedOrigins []string
	HealthChecks   map[string]HealthChecker
}

// NewRouter assembles the full route tree. Flow endpoints are public; event
// and profile routes need a bearer token; whitelist management additionally
// needs the admin role.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Describe)

	r.Get("/healthz", healthHandler(cfg.HealthChecks))

	r.Group(func(r chi.Router) {
		if cfg.AuthLimiter != nil {
			r.Use(cfg.AuthLimiter.Limit)
		}
		cfg.Auth.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.TokenValidator, cfg.Logger))
		cfg.Events.Register(r)
		cfg.Profile.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminRole(cfg.Logger))
			cfg.Whitelist.Register(r)
		})
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}
		writeJSON(w, status, map[string]any{
			"status":     http.StatusText(status),
			"components": components,
		})
	}
}
