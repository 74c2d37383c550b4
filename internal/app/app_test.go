package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence/memory"
)

func TestOpenFallsBackToMemoryStore(t *testing.T) {
	a, err := Open(context.Background(), config.Config{JWTSecret: "secret", SyncDays: 7}, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.Nil(t, a.Pool)
	require.IsType(t, &memory.Store{}, a.Store)

	user, err := a.Users.SignIn(context.Background(), domain.GitHubProfile{ID: 9, Login: "octocat"}, "gh-token")
	require.NoError(t, err)
	token, err := a.Users.AccessToken(*user)
	require.NoError(t, err)
	require.Equal(t, "gh-token", token)
}

func TestOpenRejectsMissingScoringFile(t *testing.T) {
	_, err := Open(context.Background(), config.Config{JWTSecret: "secret", ScoringFile: "/nonexistent/scoring.yaml"}, logging.Discard())
	require.Error(t, err)
}
