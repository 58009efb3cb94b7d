// Package service holds the identity decision engine: role resolution,
// onboarding progression, and whitelist management. Store access is
// interface-driven so the same rules run against in-memory and PostgreSQL
// directory stores.
package service

import (
	"context"
	"log/slog"

	identitymetrics "campusgate/internal/identity/metrics"
	"campusgate/internal/identity/models"
	id "campusgate/pkg/domain"
)

// WhitelistStore is the directory-store surface the resolver and whitelist
// service need. Lookups tolerate duplicate rows: any active match is
// authoritative.
type WhitelistStore interface {
	LookupActive(ctx context.Context, email string) (*models.WhitelistEntry, error)
	Create(ctx context.Context, entry *models.WhitelistEntry) error
	Deactivate(ctx context.Context, email string) error
	List(ctx context.Context) ([]models.WhitelistEntry, error)
}

// ProfileStore is the principal-profile surface of the directory store.
type ProfileStore interface {
	FindByID(ctx context.Context, pid id.PrincipalID) (models.Principal, error)
	FindByEmail(ctx context.Context, email string) (models.Principal, error)
	Upsert(ctx context.Context, p models.Principal) error
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
}

// Option configures identity services.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func applyOptions(opts []Option) serviceConfig {
	cfg := serviceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}
