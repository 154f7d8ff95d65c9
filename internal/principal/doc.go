// Package principal defines the authenticated identity behind a tool call.
//
// A [Principal] is a tagged variant. A tenant-bound principal comes from a
// Cloudflare account API token and is scoped to exactly one account. A
// user-bound principal comes from a user token that can reach many accounts,
// so the account to operate on has to be selected separately.
//
// Principals are immutable values; the kind never changes once constructed.
// The identity layer attaches one to the request context with
// [WithPrincipal] and tool handlers read it back with [FromContext].
package principal
