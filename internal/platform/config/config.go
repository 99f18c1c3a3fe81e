package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	AdminIssuer   string
	AdminAudience string
	TxTimeout     time.Duration
	Redis         RedisConfig
	Audit         AuditConfig
	RateLimit     RateLimitConfig
}

// AuditConfig controls the audit publisher. Without brokers events stay in
// the primary store only.
type AuditConfig struct {
	KafkaBrokers []string
	Topic        string
	BufferSize   int
	Partitions   int32
}

// RateLimitConfig bounds candidate-facing requests per client address.
type RateLimitConfig struct {
	Disabled bool
	Answers  int
	Window   time.Duration
}

// RedisConfig holds the frozen-form cache connection settings. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	FrozenTTL    time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          envOr("FORMS_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		AdminIssuer:   envOr("ADMIN_TOKEN_ISSUER", "salt-in-forms"),
		AdminAudience: envOr("ADMIN_TOKEN_AUDIENCE", "forms-admin"),
		TxTimeout:     durationOr("TX_TIMEOUT", 5*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
			FrozenTTL:    durationOr("FROZEN_CACHE_TTL", 0),
		},
		Audit: AuditConfig{
			KafkaBrokers: listOr("KAFKA_BROKERS"),
			Topic:        envOr("AUDIT_TOPIC", "forms.audit"),
			BufferSize:   intOr("AUDIT_BUFFER", 1024),
			Partitions:   int32(intOr("AUDIT_TOPIC_PARTITIONS", 3)),
		},
		RateLimit: RateLimitConfig{
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
			Answers:  intOr("RATE_LIMIT_ANSWERS", 120),
			Window:   durationOr("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func listOr(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
