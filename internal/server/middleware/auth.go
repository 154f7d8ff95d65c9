package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

// IdentityResolver turns a bearer credential into a verified identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token *oauth2.Token, accountID string) (identity.Identity, error)
}

type authError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// BearerAuth authenticates every request with the Cloudflare API token in the
// Authorization header. An X-Cloudflare-Account-ID header marks the token as
// bound to that account. On success the principal, the credential and the
// user info are stored in the request context for the tool layer.
func BearerAuth(resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "authenticate")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight carries no credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := oauth.ParseAuthorizationHeader(r.Header.Get("Authorization"))
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "invalid_request", "a Cloudflare API token is required as a bearer credential")
				return
			}

			accountID := strings.TrimSpace(r.Header.Get(identity.AccountHeader))

			id, err := resolver.Resolve(r.Context(), token, accountID)
			switch {
			case errors.Is(err, identity.ErrInvalidCredential), errors.Is(err, identity.ErrMissingCredential):
				logger.Info("Rejected credential", logging.SanitizedErr(err))
				writeAuthError(w, http.StatusUnauthorized, "invalid_token", "the Cloudflare API token was rejected")
				return
			case err != nil:
				logger.Warn("Identity resolution failed", logging.SanitizedErr(err))
				writeAuthError(w, http.StatusBadGateway, "upstream_unavailable", "could not verify the credential with Cloudflare")
				return
			}

			ctx := principal.WithPrincipal(r.Context(), id.Principal)
			ctx = oauth.ContextWithCredential(ctx, token)
			if id.User != nil {
				ctx = oauth.ContextWithUserInfo(ctx, id.User)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, description string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-cloudflare-one", error="`+code+`"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authError{Error: code, Description: description})
}
