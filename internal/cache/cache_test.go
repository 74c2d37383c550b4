package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoopAlwaysMisses(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Minute))

	val, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, val)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-redis-url", "devpulse:")
	require.Error(t, err)
}
