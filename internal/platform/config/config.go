package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	pstrings "deales/pkg/platform/strings"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	LogFormat      string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
	AllowedOrigins []string
	DatabaseURL    string
	Redis          RedisConfig
	Kafka          KafkaConfig
	AuditBuffer    int
	Lockout        LockoutConfig
}

// LockoutConfig bounds failed logins per email and client IP.
type LockoutConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// RedisConfig is only used when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:           envOr("DEALES_ADDR", ":8080"),
		Environment:    envOr("DEALES_ENV", "development"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "json"),
		JWTSigningKey:  os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:      envOr("JWT_ISSUER", "deales"),
		JWTAudience:    envOr("JWT_AUDIENCE", "deales-api"),
		AccessTokenTTL: durationOr("JWT_ACCESS_TTL", 15*time.Minute),
		AllowedOrigins: pstrings.SplitListLower(envOr("ALLOWED_ORIGINS", "http://localhost:5173")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:        envOr("AUDIT_TOPIC", "deales.audit"),
			Partitions:        int32(intOr("AUDIT_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(intOr("AUDIT_TOPIC_REPLICATION", 1)),
		},
		AuditBuffer: intOr("AUDIT_BUFFER", 1024),
		Lockout: LockoutConfig{
			MaxAttempts: intOr("LOGIN_MAX_ATTEMPTS", 5),
			Window:      durationOr("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		},
	}

	if cfg.JWTSigningKey == "" {
		if cfg.Environment == "production" {
			return Server{}, errors.New("JWT_SIGNING_KEY is required in production")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = devSigningKey
	}
	if cfg.AccessTokenTTL <= 0 {
		return Server{}, errors.New("JWT_ACCESS_TTL must be positive")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func durationOr(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
