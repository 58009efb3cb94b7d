package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean; every field has a development default.
type Server struct {
	Addr        string
	MetricsAddr string

	// PostgresDSN selects the persistent directory store. Empty means
	// in-memory stores (development and tests).
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers enables the audit mirror when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// InstitutionalDomain is the college domain that grants attendee access
	// in the student flow without a whitelist entry.
	InstitutionalDomain string
	// SuperAdminEmail is permanently protected: it can never be removed from
	// or demoted in the whitelist.
	SuperAdminEmail string

	JWTSigningKey string
	SessionTTL    time.Duration

	// ProviderURL points at the external credential provider (OTP delivery,
	// code verification, password updates). Empty selects the in-process
	// provider used for development.
	ProviderURL string

	// AuthRateLimit is the number of sign-in requests allowed per client IP
	// within AuthRateWindow.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	CORSAllowedOrigins []string
}

// RedisConfig holds connection settings for the flow-session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("CAMPUSGATE_ADDR", ":8080"),
		MetricsAddr:         envOr("CAMPUSGATE_METRICS_ADDR", ":9090"),
		PostgresDSN:         os.Getenv("CAMPUSGATE_POSTGRES_DSN"),
		InstitutionalDomain: envOr("CAMPUSGATE_COLLEGE_DOMAIN", "dbcblr.edu.in"),
		SuperAdminEmail:     envOr("CAMPUSGATE_SUPER_ADMIN", "juniorsblr2024@gmail.com"),
		JWTSigningKey:       envOr("CAMPUSGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:          envDurationOr("CAMPUSGATE_SESSION_TTL", 30*time.Minute),
		ProviderURL:         os.Getenv("CAMPUSGATE_PROVIDER_URL"),
		AuthRateLimit:       envIntOr("CAMPUSGATE_AUTH_RATE_LIMIT", 30),
		AuthRateWindow:      envDurationOr("CAMPUSGATE_AUTH_RATE_WINDOW", time.Minute),
		AuditTopic:          envOr("CAMPUSGATE_AUDIT_TOPIC", "campusgate.audit"),
		Redis: RedisConfig{
			URL:          os.Getenv("CAMPUSGATE_REDIS_URL"),
			PoolSize:     envIntOr("CAMPUSGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("CAMPUSGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("CAMPUSGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("CAMPUSGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("CAMPUSGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if brokers := os.Getenv("CAMPUSGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	if origins := os.Getenv("CAMPUSGATE_CORS_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitAndTrim(origins)
	} else {
		cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
