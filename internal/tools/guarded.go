package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// ScopedHandler is a tenant-scoped tool handler. It only runs after the
// account guard has resolved the account for the call.
type ScopedHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, scope account.Scope) (*mcp.CallToolResult, error)

// Guarded adapts a ScopedHandler to a ToolHandler behind the server's
// account guard. When the guard refuses the call the handler is not run and
// the refusal is returned as a tool error.
func Guarded(h ScopedHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		guarded := sc.AccountGuard().Wrap(func(ctx context.Context, request mcp.CallToolRequest, scope account.Scope) (*mcp.CallToolResult, error) {
			annotateAccount(ctx, scope.AccountID)
			return h(ctx, request, sc, scope)
		})
		return guarded(ctx, request)
	}
}
