package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
)

// ErrInvalidArgument marks a tool argument that failed validation before
// any upstream call was made.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ErrorResult renders err as an MCP tool error.
func ErrorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(ErrorMessage(err))
}

// ErrorMessage maps an error to the text shown to the agent.
func ErrorMessage(err error) string {
	var apiErr *apigateway.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, account.ErrNoActiveAccount),
		errors.Is(err, account.ErrSessionStateUnavailable),
		errors.Is(err, account.ErrNoPrincipal):
		return account.ErrorMessage(err)
	case errors.Is(err, ErrInvalidArgument):
		return err.Error()
	case errors.As(err, &apiErr):
		return apiErrorMessage(apiErr)
	default:
		return err.Error()
	}
}

func apiErrorMessage(err *apigateway.Error) string {
	switch err.Kind {
	case apigateway.KindUpstream:
		if apigateway.IsNotFound(err) {
			return "Not found: " + err.Error()
		}
		if apigateway.IsUnauthorized(err) {
			return "Cloudflare rejected the request. The token may lack permission for this account: " + err.Error()
		}
		return "Cloudflare API error: " + err.Error()
	case apigateway.KindResponseShapeMismatch:
		return "Cloudflare returned a response in an unexpected shape: " + err.Error()
	default:
		return "Request to Cloudflare failed: " + err.Error()
	}
}
