// Package tools provides the shared plumbing for MCP tool implementations:
// registration, audit logging, the account guard hook, argument parsing and
// result rendering.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

type invocationKey struct{}

// WrapWithAuditLogging wraps a tool handler with a span, a tool call metric
// and an audit record. The wrapper captures:
//   - invocation timing
//   - the user and principal kind attached by the identity layer
//   - the account the guard resolved, when the tool is tenant-scoped
//   - success or error status from the handler result
//   - trace context for correlation
//
// User ids are hashed by the audit logger; credentials are never recorded.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		attrs := instrumentation.NewSpanAttributeBuilder().WithTool(toolName)
		invocation := instrumentation.NewToolInvocation(toolName)

		if user, ok := oauth.UserInfoFromContext(ctx); ok && user != nil {
			invocation.WithUser(user.ID, user.Email)
			attrs.WithUserDomain(user.Email)
		}
		if p, ok := principal.FromContext(ctx); ok {
			invocation.WithPrincipal(p.Kind().String())
			attrs.WithPrincipalKind(p.Kind().String())
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()
		invocation.WithSpanContext(ctx)
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request, sc)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			// MCP tool errors are returned in the result, not as Go errors
			invocation.Complete(false, nil)
			invocation.Error = resultText(result)
			span.SetAttributes(attribute.Bool("tool.error", true))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolCall(ctx, toolName, invocation.Status(), invocation.Duration)
		sc.AuditLogger().LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// annotateAccount records the resolved account on the current invocation
// and span. It is a no-op outside WrapWithAuditLogging.
func annotateAccount(ctx context.Context, accountID string) {
	if inv, ok := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation); ok {
		inv.WithAccount(accountID)
	}
	trace.SpanFromContext(ctx).SetAttributes(
		instrumentation.NewSpanAttributeBuilder().WithAccount(accountID).Build()...)
}

// resultText returns the first text content of a result.
func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
