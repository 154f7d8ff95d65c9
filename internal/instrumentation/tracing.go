package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-cloudflare-one package.
const TracerName = "github.com/giantswarm/mcp-cloudflare-one"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrAccountID is the resolved Cloudflare account id.
	SpanAttrAccountID = "cloudflare.account_id"

	// SpanAttrPrincipalKind is tenant_bound or user_bound.
	SpanAttrPrincipalKind = "mcp.principal.kind"

	// SpanAttrUserDomain is the user's email domain.
	SpanAttrUserDomain = "mcp.user.domain"

	// SpanAttrEndpoint is the templated upstream endpoint.
	SpanAttrEndpoint = "cloudflare.endpoint"

	// SpanAttrMethod is the upstream HTTP method.
	SpanAttrMethod = "http.request.method"

	// SpanAttrStatusCode is the upstream HTTP status code.
	SpanAttrStatusCode = "http.response.status_code"

	// SpanAttrRequestID is the outbound request correlation id.
	SpanAttrRequestID = "cloudflare.request_id"

	// SpanAttrBackend is the active account store backend.
	SpanAttrBackend = "mcp.store.backend"

	// SpanAttrCacheHit indicates whether a cache hit occurred.
	SpanAttrCacheHit = "mcp.cache_hit"
)

// SpanAttributeBuilder helps construct span attributes with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithAccount adds the account id attribute when non-empty.
func (b *SpanAttributeBuilder) WithAccount(accountID string) *SpanAttributeBuilder {
	if accountID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrAccountID, accountID))
	}
	return b
}

// WithPrincipalKind adds the principal kind attribute.
func (b *SpanAttributeBuilder) WithPrincipalKind(kind string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrPrincipalKind, kind))
	return b
}

// WithUserDomain adds the email domain of the user, never the full address.
func (b *SpanAttributeBuilder) WithUserDomain(email string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrUserDomain, ExtractUserDomain(email)))
	return b
}

// WithEndpoint adds the templated endpoint attribute.
func (b *SpanAttributeBuilder) WithEndpoint(endpoint string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrEndpoint, TemplateEndpoint(endpoint)))
	return b
}

// WithCacheHit adds the cache hit indicator attribute.
func (b *SpanAttributeBuilder) WithCacheHit(hit bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrCacheHit, hit))
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller must end the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartUpstreamSpan starts a client span for a Cloudflare API call. The path
// is templated so span names stay low-cardinality.
func StartUpstreamSpan(ctx context.Context, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	endpoint := TemplateEndpoint(path)

	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrMethod, method),
		attribute.String(SpanAttrEndpoint, endpoint),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "cloudflare "+method+" "+endpoint,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID of the current span, or "".
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID of the current span, or "".
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns "trace_id=X span_id=Y", or "" without a valid span.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
