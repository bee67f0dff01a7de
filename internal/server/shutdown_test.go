package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketing-dashboard/internal/config"
)

func testGracefulServer(addr string) *GracefulServer {
	cfg := &config.Config{Server: config.ServerConfig{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}}
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	return NewGracefulServer(srv, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
}

func TestGracefulServer_StopRunsHooks(t *testing.T) {
	gs := testGracefulServer("127.0.0.1:0")

	var ran atomic.Int32
	for range 2 {
		gs.RegisterShutdownHook(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	require.NoError(t, gs.serve(stop))
	assert.Equal(t, int32(2), ran.Load())
}

func TestGracefulServer_HookErrorIsReturned(t *testing.T) {
	gs := testGracefulServer("127.0.0.1:0")
	hookErr := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return hookErr })

	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGINT

	err := gs.serve(stop)
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
}

func TestGracefulServer_ListenFailure(t *testing.T) {
	gs := testGracefulServer("127.0.0.1:-1")

	err := gs.serve(make(chan os.Signal))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}
