package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	c := &domain.Cursor{CreatedAt: time.Date(2025, 3, 1, 12, 30, 0, 123, time.UTC), ID: "abc"}
	token := EncodeCursor(c)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	require.Equal(t, "abc", decoded.ID)
}

func TestDecodeCursorEdgeCases(t *testing.T) {
	c, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, c)
	require.Empty(t, EncodeCursor(nil))

	_, err = DecodeCursor("%%%")
	require.ErrorIs(t, err, domain.ErrValidation)
}
