package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod      = "method"
	attrPath        = "path"
	attrStatus      = "status"
	attrTool        = "tool"
	attrEndpoint    = "endpoint"
	attrStatusClass = "status_class"
	attrOutcome     = "outcome"
	attrBackend     = "backend"
	attrOperation   = "operation"
	attrResult      = "result"
	attrKind        = "kind"
	attrCache       = "cache"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// MCP tool metrics
	toolCallsTotal   metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	// Cloudflare API metrics
	upstreamRequestsTotal   metric.Int64Counter
	upstreamRequestDuration metric.Float64Histogram

	// Active account store and guard metrics
	storeOperationsTotal   metric.Int64Counter
	storeOperationDuration metric.Float64Histogram
	guardDecisionsTotal    metric.Int64Counter

	// Identity resolution metrics
	identityResolutionsTotal metric.Int64Counter
	identityCacheEntries     metric.Int64Gauge

	// detailedLabels adds the endpoint template to upstream metrics. The
	// catalog has roughly a hundred templates, so it stays opt-in.
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.toolCallsTotal, err = meter.Int64Counter(
		"mcp_tool_calls_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_calls_total counter: %w", err)
	}

	m.toolCallDuration, err = meter.Float64Histogram(
		"mcp_tool_call_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_call_duration_seconds histogram: %w", err)
	}

	m.upstreamRequestsTotal, err = meter.Int64Counter(
		"cloudflare_api_requests_total",
		metric.WithDescription("Total number of Cloudflare API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare_api_requests_total counter: %w", err)
	}

	m.upstreamRequestDuration, err = meter.Float64Histogram(
		"cloudflare_api_request_duration_seconds",
		metric.WithDescription("Cloudflare API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare_api_request_duration_seconds histogram: %w", err)
	}

	m.storeOperationsTotal, err = meter.Int64Counter(
		"active_account_store_operations_total",
		metric.WithDescription("Total number of active account store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_account_store_operations_total counter: %w", err)
	}

	m.storeOperationDuration, err = meter.Float64Histogram(
		"active_account_store_operation_duration_seconds",
		metric.WithDescription("Active account store operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_account_store_operation_duration_seconds histogram: %w", err)
	}

	m.guardDecisionsTotal, err = meter.Int64Counter(
		"account_guard_decisions_total",
		metric.WithDescription("Total number of account guard decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account_guard_decisions_total counter: %w", err)
	}

	m.identityResolutionsTotal, err = meter.Int64Counter(
		"identity_resolutions_total",
		metric.WithDescription("Total number of credential to principal resolutions"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_resolutions_total counter: %w", err)
	}

	m.identityCacheEntries, err = meter.Int64Gauge(
		"identity_cache_entries",
		metric.WithDescription("Current number of cached principal resolutions"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_cache_entries gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)

	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolCall records one MCP tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolCallsTotal == nil || m.toolCallDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	m.toolCallsTotal.Add(ctx, 1, attrs)
	m.toolCallDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUpstreamRequest records one Cloudflare API call. statusCode is 0
// when no response was received.
//
// CARDINALITY NOTE: the endpoint label is only added with detailed labels
// enabled; use traces to break latency down per endpoint otherwise.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, method, endpoint string, statusCode int, outcome string, duration time.Duration) {
	if m == nil || m.upstreamRequestsTotal == nil || m.upstreamRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatusClass, StatusClass(statusCode)),
		attribute.String(attrOutcome, outcome),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrEndpoint, endpoint))
	}

	m.upstreamRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.upstreamRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordStoreOperation records one active account store operation.
// It satisfies accountstore.MetricsRecorder.
func (m *Metrics) RecordStoreOperation(ctx context.Context, backend, operation, result string, duration time.Duration) {
	if m == nil || m.storeOperationsTotal == nil || m.storeOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrBackend, backend),
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	)

	m.storeOperationsTotal.Add(ctx, 1, attrs)
	m.storeOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGuardDecision records the outcome of an account guard check.
func (m *Metrics) RecordGuardDecision(ctx context.Context, outcome string) {
	if m == nil || m.guardDecisionsTotal == nil {
		return
	}

	m.guardDecisionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordIdentityResolution records a credential resolution. kind is the
// principal kind, result is success or error, and cacheHit tells whether the
// upstream lookup was skipped.
func (m *Metrics) RecordIdentityResolution(ctx context.Context, kind, result string, cacheHit bool) {
	if m == nil || m.identityResolutionsTotal == nil {
		return
	}

	cache := "miss"
	if cacheHit {
		cache = "hit"
	}

	m.identityResolutionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrResult, result),
		attribute.String(attrCache, cache),
	))
}

// SetIdentityCacheSize records the current number of cached resolutions.
func (m *Metrics) SetIdentityCacheSize(ctx context.Context, size int) {
	if m == nil || m.identityCacheEntries == nil {
		return
	}

	m.identityCacheEntries.Record(ctx, int64(size))
}
