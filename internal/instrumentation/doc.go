// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the mcp-cloudflare-one server.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total, http_request_duration_seconds
//
// MCP tools:
//   - mcp_tool_calls_total, mcp_tool_call_duration_seconds (tool, status)
//
// Cloudflare API:
//   - cloudflare_api_requests_total, cloudflare_api_request_duration_seconds
//     (method, status_class, outcome, and endpoint with detailed labels)
//
// Account state:
//   - active_account_store_operations_total, active_account_store_operation_duration_seconds
//   - account_guard_decisions_total (outcome)
//   - identity_resolutions_total (kind, result, cache), identity_cache_entries
//
// # Cardinality
//
// Account ids and resource ids never become metric labels. Upstream paths are
// templated with [TemplateEndpoint] and the endpoint label is opt-in via
// METRICS_DETAILED_LABELS. Use traces for per-account debugging.
//
// # Tracing
//
// Spans are created for every tool invocation (server kind) and every
// Cloudflare API request (client kind).
//
// # Configuration
//
// Instrumentation is disabled by default. Environment variables:
//   - INSTRUMENTATION_ENABLED: true to enable exporters
//   - METRICS_EXPORTER: prometheus, otlp or stdout
//   - TRACING_EXPORTER: otlp, stdout or none
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG: sampling ratio, default 0.1
//   - OTEL_SERVICE_NAME: default mcp-cloudflare-one
package instrumentation
