// Package accountstore persists the active Cloudflare account selected by
// each user-bound principal.
//
// A [Store] holds at most one account id per user id. Records are created
// lazily on the first [Store.Set] and never expire. Reading a user that never
// selected an account is not an error: Get reports ok=false.
//
// All operations for one user id are serialized; operations for different
// user ids never wait on each other. Every backend provides this:
//
//   - memory: a sharded map with a mutex per record;
//   - redis: single-key GET/SET, atomic on the server;
//   - postgres: single-row upsert through pgxpool;
//   - sqlite: single-row upsert through database/sql and modernc.org/sqlite.
//
// Backend failures are returned as [*UnavailableError], which matches
// [ErrUnavailable] with errors.Is. Callers can therefore distinguish
// "nothing selected" (ok=false, nil error) from "could not find out".
//
// The store does not check that an account exists or is reachable; callers
// verify that against the API before calling Set.
package accountstore
