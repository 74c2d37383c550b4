package httptransport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/logging"
)

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultServerConfig("127.0.0.1:0")
	cfg.ShutdownTimeout = time.Second

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, http.NotFoundHandler(), logging.Discard())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	err := Run(context.Background(), DefaultServerConfig("256.0.0.1:bad"), http.NotFoundHandler(), logging.Discard())
	require.Error(t, err)
}
