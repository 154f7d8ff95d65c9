// Package oauth bridges the github.com/giantswarm/mcp-oauth library and
// golang.org/x/oauth2 with the rest of the server.
//
// Two values travel through a request context:
//
//   - the caller's bearer credential, stored as an [oauth2.Token] so that
//     outbound requests can use [oauth2.Token.SetAuthHeader];
//   - the authenticated user's [UserInfo], stored with the mcp-oauth helpers
//     so that audit logging and tool handlers can attribute a call.
//
// The credential is never logged. Use [logging.SanitizeToken] when a token
// needs to appear in diagnostics.
//
// The OAuth authorization-code handshake itself is not implemented here;
// callers arrive with a Cloudflare API token already issued.
package oauth
