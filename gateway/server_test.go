package gateway

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/example/rentalshop/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listeningConfig() *config.Config {
	cfg := testConfig()
	cfg.Gateway = config.GatewayConfig{Host: "127.0.0.1", Port: 0}
	return cfg
}

func waitStart(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	e := newTestEnv(t, listeningConfig(), nil)

	require.NoError(t, e.gw.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- e.gw.Start() }()
	waitStart(t, done)
}

func TestShutdownStopsRunningServer(t *testing.T) {
	e := newTestEnv(t, listeningConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- e.gw.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.gw.Shutdown(ctx))
	waitStart(t, done)
}

func TestCORSCredentials(t *testing.T) {
	explicit := corsConfig(config.CORSConfig{AllowOrigins: []string{"http://shop.example"}})
	assert.True(t, explicit.AllowCredentials)
	assert.False(t, explicit.AllowAllOrigins)
	assert.Equal(t, []string{"http://shop.example"}, explicit.AllowOrigins)

	wildcard := corsConfig(config.CORSConfig{AllowOrigins: []string{"*"}})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.False(t, wildcard.AllowCredentials)
}

func TestCORSAllowsCookieForListedOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowOrigins = []string{"http://shop.example"}
	e := newTestEnv(t, cfg, nil)

	w := e.do(t, http.MethodGet, "/health", nil, func(r *http.Request) {
		r.Header.Set("Origin", "http://shop.example")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
