package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"campusgate/internal/audit"
	auditkafka "campusgate/internal/audit/kafka"
	flowmetrics "campusgate/internal/authflow/metrics"
	"campusgate/internal/authflow/provider"
	"campusgate/internal/authflow/provider/httpprov"
	providermemory "campusgate/internal/authflow/provider/memory"
	"campusgate/internal/authflow/service"
	sessionstore "campusgate/internal/authflow/store/session"
	eventmetrics "campusgate/internal/event/metrics"
	eventservice "campusgate/internal/event/service"
	eventstore "campusgate/internal/event/store"
	identitymetrics "campusgate/internal/identity/metrics"
	"campusgate/internal/identity/models"
	identityservice "campusgate/internal/identity/service"
	profilestore "campusgate/internal/identity/store/profile"
	whiteliststore "campusgate/internal/identity/store/whitelist"
	"campusgate/internal/platform/config"
	"campusgate/internal/platform/httpserver"
	"campusgate/internal/platform/logger"
	"campusgate/internal/platform/postgres"
	platformredis "campusgate/internal/platform/redis"
	"campusgate/internal/ratelimit"
	"campusgate/internal/token"
	httptransport "campusgate/internal/transport/http"
	id "campusgate/pkg/domain"
)

// main wires the dependency graph and keeps the process lifecycle small.
// Business rules live in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Directory stores: postgres when a DSN is configured, in-memory
	// otherwise.
	var (
		whitelist  identityservice.WhitelistStore
		profiles   identityservice.ProfileStore
		events     eventservice.Store
		auditStore audit.Store
	)
	healthChecks := map[string]httptransport.HealthChecker{}

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer db.Close()
		if err := postgres.RunMigrations(db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		whitelist = whiteliststore.NewPostgres(db)
		profiles = profilestore.NewPostgres(db)
		events = eventstore.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		healthChecks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
		log.Info("using postgres directory store")
	} else {
		whitelist = whiteliststore.NewInMemory()
		profiles = profilestore.NewInMemory()
		events = eventstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	// Flow sessions and the sign-in rate limiter share redis when it is
	// configured, and fall back to process-local state otherwise.
	var (
		sessions  service.SessionStore
		limitSink ratelimit.Store
	)
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedisStore(redisClient.Client, cfg.SessionTTL)
		limitSink = ratelimit.NewRedisStore(redisClient.Client)
		healthChecks["redis"] = redisClient.Health
		log.Info("using redis flow-session store")
	} else {
		sessions = sessionstore.NewInMemory(cfg.SessionTTL)
		limitSink = ratelimit.NewInMemoryStore()
		log.Warn("no redis URL configured, using in-memory flow sessions")
	}
	authLimiter := ratelimit.NewMiddleware(limitSink, cfg.AuthRateLimit, cfg.AuthRateWindow, log)

	// Credential provider: hosted service when configured, in-process
	// otherwise.
	var credProvider provider.CredentialProvider
	if cfg.ProviderURL != "" {
		credProvider = httpprov.New(cfg.ProviderURL)
		log.Info("using hosted credential provider", "url", cfg.ProviderURL)
	} else {
		credProvider = providermemory.New()
		log.Warn("no provider URL configured, using in-process credential provider")
	}

	// Audit pipeline.
	publisher := audit.NewPublisher(256, log)
	var sinks []audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return fmt.Errorf("kafka sink: %w", err)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("audit events mirrored to kafka", "topic", cfg.AuditTopic)
	}
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log, sinks...)

	// Services.
	idMetrics := identitymetrics.New()
	resolver := identityservice.NewResolver(whitelist, cfg.InstitutionalDomain,
		identityservice.WithLogger(log), identityservice.WithMetrics(idMetrics))
	onboarding := identityservice.NewOnboarding()
	profileSvc := identityservice.NewProfiles(profiles, identityservice.WithLogger(log))
	whitelistSvc := identityservice.NewWhitelist(whitelist, cfg.SuperAdminEmail, publisher,
		identityservice.WithLogger(log), identityservice.WithMetrics(idMetrics))

	tokenSvc := token.NewService(cfg.JWTSigningKey, "campusgate", cfg.SessionTTL)

	orchestrator := service.NewOrchestrator(
		resolver, onboarding, profiles, sessions, credProvider, tokenSvc, publisher,
		service.WithLogger(log), service.WithMetrics(flowmetrics.New()))

	eventSvc := eventservice.NewEventService(events, publisher,
		eventservice.WithLogger(log), eventservice.WithMetrics(eventmetrics.New()))

	if err := seedSuperAdmin(ctx, whitelist, cfg.SuperAdminEmail, log); err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(orchestrator, log),
		Events:         httptransport.NewEventHandler(eventSvc, profiles, log),
		Profile:        httptransport.NewProfileHandler(profileSvc, log),
		Whitelist:      httptransport.NewWhitelistHandler(whitelistSvc, log),
		TokenValidator: token.NewMiddlewareAdapter(tokenSvc),
		Logger:         log,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:   healthChecks,
	})

	apiServer := httpserver.New(cfg.Addr, router)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server listening", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedSuperAdmin guarantees the protected admin account is always
// whitelisted, including on a fresh directory store.
func seedSuperAdmin(ctx context.Context, store identityservice.WhitelistStore, email string, log *slog.Logger) error {
	if email == "" {
		return nil
	}

	if _, err := store.LookupActive(ctx, email); err == nil {
		return nil
	}
	entry, err := models.NewWhitelistEntry(id.NewWhitelistEntryID(), email, "Super Admin", models.RoleAdmin, time.Now())
	if err != nil {
		return err
	}
	if err := store.Create(ctx, entry); err != nil {
		return err
	}
	log.Info("super admin whitelisted", "email", email)
	return nil
}
