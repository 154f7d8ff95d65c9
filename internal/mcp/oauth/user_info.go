package oauth

import (
	"context"

	mcpoauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers"
)

// UserInfo is the authenticated user as seen by the mcp-oauth library.
type UserInfo = providers.UserInfo

// ContextWithUserInfo stores user info in ctx using the mcp-oauth context key,
// so that both this package and the library observe the same value.
func ContextWithUserInfo(ctx context.Context, user *UserInfo) context.Context {
	if user == nil {
		return ctx
	}
	return mcpoauth.ContextWithUserInfo(ctx, user)
}

// UserInfoFromContext returns the authenticated user info stored in ctx.
func UserInfoFromContext(ctx context.Context) (*UserInfo, bool) {
	user, ok := mcpoauth.UserInfoFromContext(ctx)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// HasUserInfo reports whether ctx carries authenticated user info.
func HasUserInfo(ctx context.Context) bool {
	_, ok := UserInfoFromContext(ctx)
	return ok
}

// GetUserEmailFromContext returns the user's email, or "" when unknown.
func GetUserEmailFromContext(ctx context.Context) string {
	if user, ok := UserInfoFromContext(ctx); ok {
		return user.Email
	}
	return ""
}

// GetUserIDFromContext returns the user's id, or "" when unknown.
func GetUserIDFromContext(ctx context.Context) string {
	if user, ok := UserInfoFromContext(ctx); ok {
		return user.ID
	}
	return ""
}
