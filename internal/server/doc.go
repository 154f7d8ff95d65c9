// Package server provides the ServerContext and the HTTP serving
// infrastructure of the Cloudflare One MCP server.
//
// The ServerContext Pattern:
//
// ServerContext carries every dependency a tool handler needs:
//
//   - the Cloudflare API gateway (apigateway.Client)
//   - the active account store and the resolver and guard built on it
//   - the identity resolver used by the HTTP transports
//   - the instrumentation provider, logger and configuration
//
// Dependencies are injected with functional options and validated once.
// The account resolver and guard are derived from the store after all
// options are applied, so every tool sees the same store.
//
// Example usage:
//
//	api := apigateway.New(apigateway.WithBaseURL(cfg.APIBaseURL))
//	store, err := accountstore.New(ctx, storeCfg)
//	if err != nil {
//		return err
//	}
//	sc, err := server.NewServerContext(ctx,
//		server.WithAPIClient(api),
//		server.WithAccountStore(store),
//		server.WithIdentityResolver(identity.NewResolver(api)),
//		server.WithToolsets([]string{"gateway", "casb"}),
//	)
//	if err != nil {
//		return err
//	}
//	defer sc.Shutdown()
//
// Serving:
//
// HTTPServer wraps an MCP server with the streamable HTTP or SSE transport.
// MCP endpoints require a Cloudflare API token as a bearer credential; the
// health endpoints (/healthz, /readyz, /healthz/detailed) do not. Readiness
// includes a ping of the active account store. MetricsServer exposes
// Prometheus metrics on a separate listener.
package server
