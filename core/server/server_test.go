package server_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/core/server"
)

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing address", func(t *testing.T) {
		t.Parallel()

		_, err := server.NewFromConfig(server.Config{})
		assert.ErrorIs(t, err, server.ErrMissingAddress)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		srv, err := server.NewFromConfig(server.DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, srv)
	})
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	srv := server.New(":0")
	assert.NoError(t, srv.Stop())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0", server.WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.NewServeMux())()
	}()

	// Give the listener a moment to come up before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}
