package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("POSTGRES_URL", "")

	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, "devpulse", cfg.JWTIssuer)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.KafkaEnabled())
	require.Equal(t, []string{"devpulse.metrics_synced", "devpulse.insights_generated"}, cfg.ConsumerTopics)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("OUTBOX_POLL_INTERVAL", "750ms")
	t.Setenv("GITHUB_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("ADMIN_LOGINS", "octocat,hubot")
	t.Setenv("DLQ_MAX_RETRIES", "not-a-number")

	cfg := Load()

	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.KafkaEnabled())
	require.Equal(t, 750*time.Millisecond, cfg.OutboxPollInterval)
	require.InDelta(t, 2.5, cfg.GitHubRequestsPerSec, 0.0001)
	require.True(t, cfg.MigrateOnStart)
	require.Equal(t, []string{"octocat", "hubot"}, cfg.AdminLogins)
	require.Equal(t, 5, cfg.DLQMaxRetries)
}
