package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

type stubResolver struct {
	identity identity.Identity
	err      error

	gotToken   string
	gotAccount string
}

func (s *stubResolver) Resolve(_ context.Context, token *oauth2.Token, accountID string) (identity.Identity, error) {
	s.gotToken = token.AccessToken
	s.gotAccount = accountID
	return s.identity, s.err
}

func TestBearerAuth_PopulatesContext(t *testing.T) {
	resolver := &stubResolver{identity: identity.Identity{
		Principal: principal.UserBound("user-7"),
		User:      &oauth.UserInfo{ID: "user-7", Email: "ops@example.com"},
	}}

	var (
		gotPrincipal principal.Principal
		gotToken     *oauth2.Token
		gotUser      *oauth.UserInfo
	)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, _ = principal.FromContext(r.Context())
		gotToken, _ = oauth.CredentialFromContext(r.Context())
		gotUser, _ = oauth.UserInfoFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer cf-token")
	rec := httptest.NewRecorder()

	BearerAuth(resolver, nil)(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cf-token", resolver.gotToken)
	assert.Empty(t, resolver.gotAccount)

	userID, ok := gotPrincipal.UserID()
	require.True(t, ok)
	assert.Equal(t, "user-7", userID)
	require.NotNil(t, gotToken)
	assert.Equal(t, "cf-token", gotToken.AccessToken)
	require.NotNil(t, gotUser)
	assert.Equal(t, "ops@example.com", gotUser.Email)
}

func TestBearerAuth_PassesAccountHeader(t *testing.T) {
	resolver := &stubResolver{identity: identity.Identity{Principal: principal.TenantBound("acc-1")}}

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "bearer cf-token")
	req.Header.Set(identity.AccountHeader, " acc-1 ")
	rec := httptest.NewRecorder()

	BearerAuth(resolver, nil)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc-1", resolver.gotAccount)
}

func TestBearerAuth_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "invalid_request",
		},
		{
			name:       "basic scheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "invalid_request",
		},
		{
			name:       "invalid credential",
			header:     "Bearer revoked",
			err:        fmt.Errorf("verify: %w", identity.ErrInvalidCredential),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "invalid_token",
		},
		{
			name:       "upstream failure",
			header:     "Bearer cf-token",
			err:        errors.New("dial tcp 10.0.0.1:443: connection refused"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &stubResolver{err: tt.err}
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			BearerAuth(resolver, nil)(handler).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body authError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func TestBearerAuth_PreflightSkipsAuth(t *testing.T) {
	resolver := &stubResolver{err: identity.ErrInvalidCredential}

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	rec := httptest.NewRecorder()

	BearerAuth(resolver, nil)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
