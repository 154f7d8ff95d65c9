// Package identity turns a Cloudflare bearer credential into a principal.
//
// A request that names an account (the X-Cloudflare-Account-ID header, or
// the configured account for stdio) is treated as an account API token: the
// token is verified against that account and yields a tenant-bound
// principal. Otherwise the token is treated as a user token and
// GET /user yields a user-bound principal.
//
// Results are cached per token hash for a short TTL so that a burst of tool
// calls costs one verification. Concurrent misses for the same token share
// one upstream request.
package identity
