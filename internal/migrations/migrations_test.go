package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreGooseAnnotated(t *testing.T) {
	entries, err := fs.Glob(files, "sql/*.sql")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, name := range entries {
		raw, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		body := string(raw)
		require.Truef(t, strings.HasPrefix(body, "-- +goose Up"), "%s must start with a goose Up marker", name)
		require.Containsf(t, body, "-- +goose Down", "%s must be reversible", name)
	}
}
