// Package accounttools provides the tools that list accounts and select the
// active account for user-bound principals. They are always registered.
package accounttools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Tool names.
const (
	ToolAccountsList      = "accounts_list"
	ToolSetActiveAccount  = "set_active_account"
	ToolGetActiveAccount  = "get_active_account"
	accountIDArgumentName = "account_id"
)

// RegisterTools registers the account tools.
func RegisterTools(r *tools.Registry) error {
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List the Cloudflare accounts this credential can access"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("name",
			mcp.Description("Filter by account name (optional)"),
		),
	}
	listOpts = append(listOpts, tools.PaginationParams(apigateway.SizeParamPerPage)...)

	return r.RegisterAll([]tools.Definition{
		{
			Tool:    mcp.NewTool(ToolAccountsList, listOpts...),
			Handler: handleListAccounts,
		},
		{
			Tool: mcp.NewTool(ToolSetActiveAccount,
				mcp.WithDescription("Set the active Cloudflare account for subsequent tool calls. "+
					"Confirm the account with the user before calling this tool."),
				mcp.WithString(accountIDArgumentName,
					mcp.Required(),
					mcp.Description("ID of the account to make active, as returned by accounts_list"),
				),
			),
			Handler: handleSetActiveAccount,
		},
		{
			Tool: mcp.NewTool(ToolGetActiveAccount,
				mcp.WithDescription("Get the Cloudflare account that tenant-scoped tools currently operate on"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: handleGetActiveAccount,
		},
	})
}
