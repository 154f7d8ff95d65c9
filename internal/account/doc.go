// Package account resolves which Cloudflare account a tool call operates on
// and gates tenant-scoped tools behind that resolution.
//
// [Resolver] maps a principal to an account id. Tenant-bound principals
// carry their account and never touch the store. User-bound principals read
// their selection from an [accountstore.Store]; an unset selection is
// reported as [ErrNotSelected] and is never replaced by a default.
//
// [Guard] wraps tenant-scoped handlers. It runs the handler only when an
// account was resolved, and fails closed when the store cannot be reached.
// The guard never writes selections.
package account
