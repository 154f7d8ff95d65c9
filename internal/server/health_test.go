// Package server provides tests for health check functionality.
// These tests verify the /healthz, /readyz, and /healthz/detailed endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
)

// downStore is an account store whose backend cannot be reached.
type downStore struct{}

func (downStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (downStore) Set(context.Context, string, string) error { return errors.New("connection refused") }
func (downStore) Ping(context.Context) error                { return errors.New("connection refused") }
func (downStore) Close() error                              { return nil }

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	base := []Option{
		WithAPIClient(apigateway.New()),
		WithAccountStore(accountstore.NewMemory()),
	}
	sc, err := NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewHealthChecker(t *testing.T) {
	sc := newTestServerContext(t)
	hc := NewHealthChecker(sc)

	assert.NotNil(t, hc)
	assert.True(t, hc.IsReady(), "health checker should be ready by default")
	assert.Equal(t, sc, hc.serverContext)
}

func TestHealthChecker_SetReady(t *testing.T) {
	hc := NewHealthChecker(nil)

	assert.True(t, hc.IsReady())

	hc.SetReady(false)
	assert.False(t, hc.IsReady())

	hc.SetReady(true)
	assert.True(t, hc.IsReady())
}

func TestLivenessHandler(t *testing.T) {
	sc := newTestServerContext(t, WithConfig(&Config{Version: "1.2.3"}))
	hc := NewHealthChecker(sc)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	hc.LivenessHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "1.2.3", response.Version)
}

func TestReadinessHandler_Ready(t *testing.T) {
	hc := NewHealthChecker(newTestServerContext(t))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "ok", response.Checks["ready"])
	assert.Equal(t, "ok", response.Checks["shutdown"])
	assert.Equal(t, "ok", response.Checks["account_store"])
}

func TestReadinessHandler_NotReady(t *testing.T) {
	hc := NewHealthChecker(newTestServerContext(t))
	hc.SetReady(false)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "not ready", response.Status)
	assert.Equal(t, "not ready", response.Checks["ready"])
}

func TestReadinessHandler_ShuttingDown(t *testing.T) {
	sc := newTestServerContext(t)
	hc := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "shutting down", response.Checks["shutdown"])
}

func TestReadinessHandler_StoreUnreachable(t *testing.T) {
	sc := newTestServerContext(t, WithAccountStore(downStore{}))
	hc := NewHealthChecker(sc)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "not ready", response.Status)
	assert.Equal(t, "unreachable", response.Checks["account_store"])
}

func TestDetailedHealthHandler(t *testing.T) {
	resolver := identity.NewResolver(apigateway.New())
	sc := newTestServerContext(t, WithIdentityResolver(resolver))
	hc := NewHealthChecker(sc)
	hc.SetTransport("streamable-http")

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "streamable-http", response.Transport)
	assert.NotEmpty(t, response.Uptime)

	require.NotNil(t, response.AccountStore)
	assert.Equal(t, accountstore.BackendMemory, response.AccountStore.Backend)
	assert.True(t, response.AccountStore.Reachable)

	require.NotNil(t, response.Identity)
	assert.True(t, response.Identity.Enabled)
	assert.Equal(t, 0, response.Identity.CachedEntries)

	require.NotNil(t, response.Instrumentation)
	assert.False(t, response.Instrumentation.Enabled)
}

func TestDetailedHealthHandler_StoreUnreachable(t *testing.T) {
	sc := newTestServerContext(t, WithAccountStore(downStore{}))
	hc := NewHealthChecker(sc)

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "degraded", response.Status)
	require.NotNil(t, response.AccountStore)
	assert.False(t, response.AccountStore.Reachable)
	assert.Equal(t, "connection refused", response.AccountStore.Error)
}

func TestDetailedHealthHandler_NoIdentityResolver(t *testing.T) {
	hc := NewHealthChecker(newTestServerContext(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	require.NotNil(t, response.Identity)
	assert.False(t, response.Identity.Enabled)
}

func TestDetailedHealthHandler_NotReady(t *testing.T) {
	hc := NewHealthChecker(newTestServerContext(t))
	hc.SetReady(false)

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "not ready", response.Status)
}

func TestDetailedHealthHandler_ShuttingDown(t *testing.T) {
	sc := newTestServerContext(t)
	hc := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "shutting down", response.Status)
}

func TestDetailedHealthHandler_NilServerContext(t *testing.T) {
	hc := NewHealthChecker(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil)
	rr := httptest.NewRecorder()
	hc.DetailedHealthHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Nil(t, response.AccountStore)
	assert.Nil(t, response.Identity)
}

func TestRegisterHealthEndpoints(t *testing.T) {
	hc := NewHealthChecker(newTestServerContext(t))
	mux := http.NewServeMux()
	hc.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestGetInstrumentationStatus(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		hc := NewHealthChecker(newTestServerContext(t))
		status := hc.getInstrumentationStatus()
		require.NotNil(t, status)
		assert.False(t, status.Enabled)
	})

	t.Run("disabled provider", func(t *testing.T) {
		provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
		require.NoError(t, err)

		hc := NewHealthChecker(newTestServerContext(t, WithInstrumentationProvider(provider)))
		status := hc.getInstrumentationStatus()
		require.NotNil(t, status)
		assert.False(t, status.Enabled)
	})
}
