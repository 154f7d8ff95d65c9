package tools

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// CheckWriteAllowed returns an error result when read-only mode is enabled
// and the tool issues a request other than GET, or nil if the call may go
// ahead. It must run before anything is sent upstream.
func CheckWriteAllowed(sc *server.ServerContext, toolName, method string) *mcp.CallToolResult {
	if method == "" || method == http.MethodGet || method == http.MethodHead {
		return nil
	}
	if !sc.Config().ReadOnly {
		return nil
	}

	sc.Logger().Info("Refused write in read-only mode", logging.KeyTool, toolName, logging.KeyMethod, method)
	return mcp.NewToolResultError(fmt.Sprintf(
		"%s requests are not allowed in read-only mode (%s is disabled; restart the server without --read-only to use it)",
		cases.Title(language.English).String(strings.ToLower(method)),
		toolName,
	))
}
