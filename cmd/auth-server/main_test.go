package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lejendary/oauth2-server/app"
	"github.com/lejendary/oauth2-server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "json",
		},
	}
}

func TestInitLogger(t *testing.T) {
	t.Run("json logger", func(t *testing.T) {
		logger, err := initLogger(testConfig())
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("console logger", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogLevel = "debug"
		cfg.Observability.LogFormat = "console"

		logger, err := initLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogLevel = "invalid"

		logger, err := initLogger(cfg)
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "failed to initialize logger")
	})
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 9443

	srv := newServer(cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:9443", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.WriteTimeout)
	assert.NotNil(t, srv.Handler)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	deps := &app.Dependencies{Config: cfg, Logger: logger}

	srv := newServer(cfg, http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, cfg, deps, logger) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeReportsListenError(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	deps := &app.Dependencies{Config: cfg, Logger: logger}

	// Occupy a port so the second listener fails
	busy := httptest.NewServer(http.NotFoundHandler())
	defer busy.Close()

	srv := newServer(cfg, http.NotFoundHandler())
	srv.Addr = busy.Listener.Addr().String()

	err := serve(context.Background(), srv, cfg, deps, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}
