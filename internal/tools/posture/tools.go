// Package posture provides the CASB posture tools: finding search, finding
// instances and remediation guides.
package posture

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/knowledge"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Toolset is the name used with --toolsets.
const Toolset = "casb"

// ToolRemediationGuide is the remediation lookup tool.
const ToolRemediationGuide = "posture_remediation_guide"

// Endpoints are the posture API tools. Posture endpoints paginate with
// page_size.
var Endpoints = []tools.Endpoint{
	{
		Name:        "posture_findings_search",
		Description: "Search CASB posture findings by keyword",
		Path:        "/data-security/posture/findings",
		Query: []tools.QueryParam{
			{Name: "search", Description: "Keyword matched against finding names and descriptions (optional)"},
		},
		Paginated: true,
		SizeParam: apigateway.SizeParamPageSize,
		Schema:    findingsSchema,
	},
	{
		Name:        "posture_finding_instances",
		Description: "List the instances of a CASB posture finding, one per affected asset",
		Path:        "/data-security/posture/findings/{finding_id}/instances",
		PathParams: []tools.PathParam{
			{Name: "finding_id", Description: "UUID of the finding, as returned by posture_findings_search", UUID: true},
		},
		Paginated: true,
		SizeParam: apigateway.SizeParamPageSize,
		Schema:    instancesSchema,
	},
}

// RegisterTools registers the posture tools.
func RegisterTools(r *tools.Registry) error {
	if err := tools.RegisterEndpoints(r, Endpoints); err != nil {
		return err
	}
	return r.Register(
		mcp.NewTool(ToolRemediationGuide,
			mcp.WithDescription("Get the remediation guide for a CASB posture finding type"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("finding_type_id",
				mcp.Required(),
				mcp.Description("ID of the finding type, the finding.id field of a posture finding"),
			),
		),
		tools.Guarded(handleRemediationGuide),
	)
}

// RemediationGuideResponse is the rendered guide.
type RemediationGuideResponse struct {
	FindingTypeID string `json:"finding_type_id"`
	Guide         string `json:"guide"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Body          string `json:"body"`
}

// handleRemediationGuide answers from the embedded table. A finding type
// without a guide is a normal result.
func handleRemediationGuide(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, scope account.Scope) (*mcp.CallToolResult, error) {
	findingTypeID, err := tools.RequiredString(request, "finding_type_id")
	if err != nil {
		return tools.ErrorResult(err), nil
	}

	guide, ok := knowledge.Lookup(findingTypeID)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No remediation guide is available for finding type %s", findingTypeID)), nil
	}

	return tools.RenderValue(sc, RemediationGuideResponse{
		FindingTypeID: findingTypeID,
		Guide:         guide.Key,
		Title:         guide.Title,
		Summary:       guide.Summary,
		Body:          guide.Body,
	}), nil
}
