// Package dlp provides the Data Loss Prevention tools: datasets, profiles
// and entries, email scanner rules, limits, payload log settings and
// regex pattern validation.
package dlp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Toolset is the name used with --toolsets.
const Toolset = "dlp"

// MaxMatchBytesLimit is the largest match window the API accepts.
const MaxMatchBytesLimit = 1024

var validationSchema = apigateway.MustCompileSchema("dlp_pattern_validation", `{
	"type": "object",
	"required": ["valid"],
	"properties": {"valid": {"type": "boolean"}}
}`)

// RegisterTools registers every endpoint of the toolset.
func RegisterTools(r *tools.Registry) error {
	return tools.RegisterEndpoints(r, Endpoints)
}

func uuidParam(name, what string) []tools.PathParam {
	return []tools.PathParam{{Name: name, Description: "UUID of the " + what, UUID: true}}
}

// Endpoints are the DLP tools.
var Endpoints = []tools.Endpoint{
	{
		Name:        "dlp_datasets_list",
		Description: "List DLP datasets (exact data match and custom word lists)",
		Path:        "/dlp/datasets",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "dlp_dataset_get",
		Description: "Get a DLP dataset",
		Path:        "/dlp/datasets/{dataset_id}",
		PathParams:  uuidParam("dataset_id", "dataset"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "dlp_email_account_mapping_get",
		Description: "Get the mapping between the account and its email domain used by DLP email scanning",
		Path:        "/dlp/email/account_mapping",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "dlp_email_rules_list",
		Description: "List DLP email scanner rules",
		Path:        "/dlp/email/rules",
		Schema:      tools.ListResult,
	},
	{
		Name:        "dlp_email_rule_get",
		Description: "Get a DLP email scanner rule",
		Path:        "/dlp/email/rules/{rule_id}",
		PathParams:  uuidParam("rule_id", "email rule"),
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "dlp_entries_list",
		Description: "List DLP entries across all profiles",
		Path:        "/dlp/entries",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "dlp_entry_get",
		Description: "Get a DLP entry",
		Path:        "/dlp/entries/{entry_id}",
		PathParams:  uuidParam("entry_id", "entry"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "dlp_limits_get",
		Description: "Get the DLP limits of the account, such as the maximum dataset cells",
		Path:        "/dlp/limits",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "dlp_payload_log_settings_get",
		Description: "Get the DLP payload logging settings, including the public key used to encrypt matches",
		Path:        "/dlp/payload_log",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "dlp_profiles_list",
		Description: "List DLP profiles, both custom and predefined",
		Path:        "/dlp/profiles",
		Query: []tools.QueryParam{
			{Name: "all", Description: "Include every predefined profile, not only enabled ones", Kind: tools.ArgBool},
		},
		Schema: tools.IdentifiedList,
	},
	{
		Name:        "dlp_profile_get",
		Description: "Get a DLP profile of any type",
		Path:        "/dlp/profiles/{profile_id}",
		PathParams:  uuidParam("profile_id", "profile"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "dlp_custom_profile_get",
		Description: "Get a custom DLP profile",
		Path:        "/dlp/profiles/custom/{profile_id}",
		PathParams:  uuidParam("profile_id", "profile"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "dlp_predefined_profile_get",
		Description: "Get a predefined DLP profile",
		Path:        "/dlp/profiles/predefined/{profile_id}",
		PathParams:  uuidParam("profile_id", "profile"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "dlp_pattern_validate",
		Description: "Check that a regular expression is accepted as a DLP pattern. Nothing is saved",
		Method:      http.MethodPost,
		Path:        "/dlp/patterns/validate",
		BodyParams: []mcp.ToolOption{
			mcp.WithString("regex", mcp.Required(), mcp.Description("Regular expression to validate")),
			mcp.WithNumber("max_match_bytes",
				mcp.Description("Maximum number of bytes a match may span"),
				mcp.Min(1),
				mcp.Max(MaxMatchBytesLimit),
			),
		},
		Body:   patternBody,
		Schema: validationSchema,
	},
}

func patternBody(request mcp.CallToolRequest) (any, error) {
	regex, err := tools.RequiredString(request, "regex")
	if err != nil {
		return nil, err
	}
	body := map[string]any{"regex": regex}

	maxBytes, err := tools.OptionalInt(request, "max_match_bytes")
	if err != nil {
		return nil, err
	}
	if maxBytes < 0 || maxBytes > MaxMatchBytesLimit {
		return nil, tools.InvalidArgument("max_match_bytes must be between 1 and %d", MaxMatchBytesLimit)
	}
	if maxBytes > 0 {
		body["max_match_bytes"] = maxBytes
	}
	return body, nil
}
