package oauth

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
)

// contextKey is a custom type for context keys to avoid collisions with
// string keys from other packages.
type contextKey string

const credentialKey contextKey = "cloudflare_credential"

// ContextWithCredential stores the caller's bearer credential in ctx.
// Nil or empty tokens are ignored.
func ContextWithCredential(ctx context.Context, token *oauth2.Token) context.Context {
	if token == nil || token.AccessToken == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey, token)
}

// CredentialFromContext returns the bearer credential stored in ctx.
func CredentialFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(credentialKey).(*oauth2.Token)
	return token, ok && token != nil && token.AccessToken != ""
}

// BearerToken wraps a raw API token in an oauth2.Token with the Bearer type.
func BearerToken(raw string) *oauth2.Token {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
}

// ParseAuthorizationHeader extracts a bearer token from an Authorization
// header value. The scheme comparison is case-insensitive.
func ParseAuthorizationHeader(header string) (*oauth2.Token, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return nil, false
	}
	token := BearerToken(value)
	return token, token != nil
}

// StaticTokenSource returns a token source for a fixed API token, used by the
// stdio transport where the credential comes from configuration.
func StaticTokenSource(raw string) oauth2.TokenSource {
	token := BearerToken(raw)
	if token == nil {
		return nil
	}
	return oauth2.StaticTokenSource(token)
}
