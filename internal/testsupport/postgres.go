//go:build integration

// Package testsupport starts disposable infrastructure for integration tests.
package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/devansh054/dev-pulse-sub000/internal/migrations"
)

const postgresImage = "postgres:16-alpine"

// Postgres starts a migrated Postgres container and returns a pool connected to it.
// Container and pool are released when the test finishes.
func Postgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	// The server logs readiness twice: once for the init run, once for the real start.
	pg, err := postgrescontainer.Run(ctx, postgresImage,
		postgrescontainer.WithDatabase("devpulse"),
		postgrescontainer.WithUsername("devpulse"),
		postgrescontainer.WithPassword("devpulse"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, migrations.Up(ctx, pool))
	return pool
}
