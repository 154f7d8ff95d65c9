package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// RenderEnvelope turns an API envelope into a text result with secrets
// masked and long lists truncated.
func RenderEnvelope(sc *server.ServerContext, env *apigateway.Envelope) *mcp.CallToolResult {
	text, err := sc.OutputProcessor().RenderEnvelope(env)
	if err != nil {
		return ErrorResult(err)
	}
	return mcp.NewToolResultText(text)
}

// RenderValue renders a locally built value the same way.
func RenderValue(sc *server.ServerContext, v any) *mcp.CallToolResult {
	text, err := sc.OutputProcessor().RenderValue(v)
	if err != nil {
		return ErrorResult(err)
	}
	return mcp.NewToolResultText(text)
}
