package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "devpulse-test")
	t.Setenv("LOG_LEVEL", "error")
	color.NoColor = true

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommandMintsAdminToken(t *testing.T) {
	out, err := run(t, "token", "user-1", "--login", "octocat", "--admin")
	require.NoError(t, err)

	claims, err := authlib.Parse(strings.TrimSpace(out), authlib.Config{Secret: "cli-secret", Issuer: "devpulse-test"})
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "octocat", claims.Login)
	require.True(t, claims.IsAdmin())
}

func TestScoreCommandWithoutMetrics(t *testing.T) {
	out, err := run(t, "score", "nobody")
	require.NoError(t, err)
	require.Contains(t, out, "Health: 50/100 (not enough data)")
	require.Contains(t, out, "Burnout: not enough data")
	require.Contains(t, out, "Trend: stable")
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, err := run(t, "migrate", "status")
	require.EqualError(t, err, "POSTGRES_URL must be set")
}
