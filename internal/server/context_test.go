// Package server provides tests for ServerContext functionality.
package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

// closeTrackingStore records Close calls.
type closeTrackingStore struct {
	*accountstore.Memory
	closed int
	err    error
}

func (s *closeTrackingStore) Close() error {
	s.closed++
	return s.err
}

func TestNewServerContext_RequiredDependencies(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "missing API client",
			opts:    []Option{WithAccountStore(accountstore.NewMemory())},
			wantErr: ErrMissingAPIClient,
		},
		{
			name:    "missing account store",
			opts:    []Option{WithAPIClient(apigateway.New())},
			wantErr: ErrMissingAccountStore,
		},
		{
			name:    "nil API client option",
			opts:    []Option{WithAPIClient(nil)},
			wantErr: ErrMissingAPIClient,
		},
		{
			name:    "nil store option",
			opts:    []Option{WithAccountStore(nil)},
			wantErr: ErrMissingAccountStore,
		},
		{
			name: "nil logger",
			opts: []Option{
				WithAPIClient(apigateway.New()),
				WithAccountStore(accountstore.NewMemory()),
				WithLogger(nil),
			},
			wantErr: ErrMissingLogger,
		},
		{
			name: "nil config",
			opts: []Option{
				WithAPIClient(apigateway.New()),
				WithAccountStore(accountstore.NewMemory()),
				WithConfig(nil),
			},
			wantErr: ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := NewServerContext(context.Background(), tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, sc)
		})
	}
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t)

	assert.NotNil(t, sc.Logger())
	assert.NotNil(t, sc.APIClient())
	assert.NotNil(t, sc.AccountStore())
	assert.NotNil(t, sc.AccountResolver())
	assert.NotNil(t, sc.AccountGuard())
	assert.Nil(t, sc.IdentityResolver())
	assert.Nil(t, sc.InstrumentationProvider())
	assert.Nil(t, sc.Metrics())
	assert.NotNil(t, sc.AuditLogger())

	cfg := sc.Config()
	assert.Equal(t, "mcp-cloudflare-one", cfg.ServerName)
	assert.Equal(t, apigateway.DefaultBaseURL, cfg.APIBaseURL)
	assert.Equal(t, accountstore.BackendMemory, cfg.SessionStore)
	assert.Contains(t, cfg.Instructions, "set_active_account")
}

func TestServerContext_GuardUsesStore(t *testing.T) {
	store := accountstore.NewMemory()
	sc := newTestServerContext(t, WithAccountStore(store))

	ctx := principal.WithPrincipal(context.Background(), principal.UserBound("user-1"))
	ctx = oauth.ContextWithCredential(ctx, oauth.BearerToken("token"))

	_, err := sc.AccountGuard().Check(ctx)
	assert.ErrorIs(t, err, account.ErrNoActiveAccount)

	require.NoError(t, store.Set(ctx, "user-1", "acc-1"))

	scope, err := sc.AccountGuard().Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", scope.AccountID)
}

func TestServerContext_Config_ReturnsCopy(t *testing.T) {
	sc := newTestServerContext(t, WithToolsets([]string{"gateway"}))

	cfg := sc.Config()
	cfg.Toolsets[0] = "dlp"
	cfg.ServerName = "changed"

	assert.Equal(t, []string{"gateway"}, sc.Config().Toolsets)
	assert.Equal(t, "mcp-cloudflare-one", sc.Config().ServerName)
}

func TestServerContext_Shutdown(t *testing.T) {
	store := &closeTrackingStore{Memory: accountstore.NewMemory()}
	sc, err := NewServerContext(context.Background(),
		WithAPIClient(apigateway.New()),
		WithAccountStore(store),
	)
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Equal(t, 1, store.closed)
	assert.ErrorIs(t, sc.Context().Err(), context.Canceled)

	// Second call is a no-op.
	require.NoError(t, sc.Shutdown())
	assert.Equal(t, 1, store.closed)
}

func TestServerContext_Shutdown_ReportsCloseError(t *testing.T) {
	closeErr := errors.New("pool closed twice")
	store := &closeTrackingStore{Memory: accountstore.NewMemory(), err: closeErr}
	sc, err := NewServerContext(context.Background(),
		WithAPIClient(apigateway.New()),
		WithAccountStore(store),
	)
	require.NoError(t, err)

	err = sc.Shutdown()
	assert.ErrorIs(t, err, closeErr)
	assert.True(t, sc.IsShutdown())
}

func TestConfig_Clone(t *testing.T) {
	var nilConfig *Config
	assert.Nil(t, nilConfig.Clone())

	orig := NewDefaultConfig()
	orig.Toolsets = []string{"access", "dlp"}

	clone := orig.Clone()
	clone.Toolsets[0] = "gateway"

	assert.Equal(t, "access", orig.Toolsets[0])
	assert.Equal(t, orig.ServerName, clone.ServerName)
}

func TestConfig_ToolsetEnabled(t *testing.T) {
	tests := []struct {
		name     string
		toolsets []string
		query    string
		want     bool
	}{
		{name: "empty enables everything", toolsets: nil, query: "dlp", want: true},
		{name: "listed", toolsets: []string{"gateway", "dlp"}, query: "dlp", want: true},
		{name: "not listed", toolsets: []string{"gateway"}, query: "dlp", want: false},
		{name: "all keyword", toolsets: []string{"all"}, query: "email-security", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Toolsets: tt.toolsets}
			assert.Equal(t, tt.want, cfg.ToolsetEnabled(tt.query))
		})
	}
}

func TestOptions_MutateConfig(t *testing.T) {
	sc := newTestServerContext(t,
		WithServerName("cf-one-test"),
		WithLogLevel("debug"),
		WithToolsets([]string{"casb"}),
	)

	cfg := sc.Config()
	assert.Equal(t, "cf-one-test", cfg.ServerName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"casb"}, cfg.Toolsets)
}
