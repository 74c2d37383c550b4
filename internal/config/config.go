// Package config centralises configuration parsing for the DevPulse processes.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values shared by the api, consumer and dlqmanager binaries.
type Config struct {
	HTTPAddress        string
	MetricsAddress     string
	PostgresURL        string
	MigrateOnStart     bool
	KafkaBrokers       []string
	SchemaRegistryURL  string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	ConsumerGroupID    string
	ConsumerTopics     []string
	DLQPollInterval    time.Duration // Interval between DLQ polling iterations.
	DLQMaxRetries      int           // Maximum number of DLQ retry attempts before quarantine.
	DLQBaseDelay       time.Duration // Base delay used for exponential backoff.

	JWTSecret    string
	JWTIssuer    string
	SessionTTL   time.Duration
	CookieSecure bool
	TokenSealKey string
	AdminLogins  []string

	GitHubClientID       string
	GitHubClientSecret   string
	GitHubRedirectURL    string
	GitHubAPIURL         string
	GitHubOAuthURL       string
	GitHubRequestsPerSec float64
	GitHubRateLimitWait  time.Duration
	GitHubCacheTTL       time.Duration
	RedisURL             string

	FrontendURL  string
	CORSOrigins  []string
	APIRateLimit int
	APIRateBurst int

	SyncSchedule string
	SyncDays     int
	ScoringFile  string

	LogLevel  string
	LogFormat string
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
// A .env file in the working directory is honoured when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":8080"),
		MetricsAddress:     getEnv("METRICS_ADDRESS", ":9190"),
		PostgresURL:        getEnv("POSTGRES_URL", ""),
		MigrateOnStart:     getBoolEnv("MIGRATE_ON_START", false),
		SchemaRegistryURL:  getEnv("SCHEMA_REGISTRY_URL", ""),
		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 25),
		ConsumerGroupID:    getEnv("CONSUMER_GROUP_ID", "devpulse-insights"),
		DLQPollInterval:    getDurationEnv("DLQ_POLL_INTERVAL", 30*time.Second),
		DLQMaxRetries:      getIntEnv("DLQ_MAX_RETRIES", 5),
		DLQBaseDelay:       getDurationEnv("DLQ_BASE_DELAY", time.Minute),

		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:    getEnv("JWT_ISSUER", "devpulse"),
		SessionTTL:   getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		CookieSecure: getBoolEnv("COOKIE_SECURE", false),
		TokenSealKey: getEnv("TOKEN_SEAL_KEY", ""),

		GitHubClientID:       getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:   getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubRedirectURL:    getEnv("GITHUB_REDIRECT_URL", "http://localhost:8080/api/auth/github/callback"),
		GitHubAPIURL:         getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubOAuthURL:       getEnv("GITHUB_OAUTH_URL", "https://github.com"),
		GitHubRequestsPerSec: getFloatEnv("GITHUB_REQUESTS_PER_SECOND", 5),
		GitHubRateLimitWait:  getDurationEnv("GITHUB_RATE_LIMIT_WAIT", time.Minute),
		GitHubCacheTTL:       getDurationEnv("GITHUB_CACHE_TTL", 5*time.Minute),
		RedisURL:             getEnv("REDIS_URL", ""),

		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		APIRateLimit: getIntEnv("API_RATE_LIMIT", 20),
		APIRateBurst: getIntEnv("API_RATE_BURST", 40),

		SyncSchedule: getEnv("SYNC_SCHEDULE", ""),
		SyncDays:     getIntEnv("SYNC_DAYS", 30),
		ScoringFile:  getEnv("SCORING_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	cfg.KafkaBrokers = splitAndTrim(getEnv("KAFKA_BROKERS", ""))
	cfg.ConsumerTopics = splitAndTrim(getEnv("CONSUMER_TOPICS", "devpulse.metrics_synced,devpulse.insights_generated"))
	cfg.CORSOrigins = splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.AdminLogins = splitAndTrim(getEnv("ADMIN_LOGINS", ""))
	return cfg
}

// KafkaEnabled reports whether event publishing is configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
