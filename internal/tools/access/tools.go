package access

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
)

// Toolset is the name used with --toolsets.
const Toolset = "access"

// RegisterTools registers every endpoint of the toolset.
func RegisterTools(r *tools.Registry) error {
	for _, group := range [][]tools.Endpoint{
		ApplicationEndpoints,
		PolicyEndpoints,
		CredentialEndpoints,
		IdentityEndpoints,
		UserEndpoints,
		LogEndpoints,
	} {
		if err := tools.RegisterEndpoints(r, group); err != nil {
			return err
		}
	}
	return nil
}

func uuidParams(names ...string) []tools.PathParam {
	params := make([]tools.PathParam, 0, len(names))
	for _, n := range names {
		params = append(params, tools.PathParam{Name: n, Description: "UUID of the " + describe(n), UUID: true})
	}
	return params
}

func describe(param string) string {
	switch param {
	case "app_id":
		return "Access application"
	case "policy_id":
		return "Access policy"
	case "user_id":
		return "user"
	case "idp_id":
		return "identity provider"
	default:
		return "resource"
	}
}

// ApplicationEndpoints cover Access applications, their policies and
// short-lived certificate CAs.
var ApplicationEndpoints = []tools.Endpoint{
	{
		Name:        "access_apps_list",
		Description: "List Access applications",
		Path:        "/access/apps",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by application name"},
			{Name: "domain", Description: "Filter by application domain"},
			{Name: "aud", Description: "Filter by application audience tag"},
			{Name: "search", Description: "Search name, domain and audience"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "access_app_get",
		Description: "Get an Access application",
		Path:        "/access/apps/{app_id}",
		PathParams:  uuidParams("app_id"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_app_policies_list",
		Description: "List the policies attached to an Access application",
		Path:        "/access/apps/{app_id}/policies",
		PathParams:  uuidParams("app_id"),
		Paginated:   true,
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_app_policy_get",
		Description: "Get a policy attached to an Access application",
		Path:        "/access/apps/{app_id}/policies/{policy_id}",
		PathParams:  uuidParams("app_id", "policy_id"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_app_user_policy_checks_get",
		Description: "Check whether the calling identity passes the policies of an Access application",
		Path:        "/access/apps/{app_id}/user_policy_checks",
		PathParams:  uuidParams("app_id"),
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_cas_list",
		Description: "List short-lived certificate CAs",
		Path:        "/access/apps/ca",
		Paginated:   true,
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_app_ca_get",
		Description: "Get the short-lived certificate CA of an Access application",
		Path:        "/access/apps/{app_id}/ca",
		PathParams:  uuidParams("app_id"),
		Schema:      tools.ObjectResult,
	},
}

// PolicyEndpoints cover reusable policies, groups and policy tests.
var PolicyEndpoints = []tools.Endpoint{
	{
		Name:        "access_policies_list",
		Description: "List reusable Access policies",
		Path:        "/access/policies",
		Paginated:   true,
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_policy_get",
		Description: "Get a reusable Access policy",
		Path:        "/access/policies/{policy_id}",
		PathParams:  uuidParams("policy_id"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_groups_list",
		Description: "List Access groups",
		Path:        "/access/groups",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by group name"},
			{Name: "search", Description: "Search group names"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "access_group_get",
		Description: "Get an Access group",
		Path:        "/access/groups/{group_id}",
		PathParams:  []tools.PathParam{{Name: "group_id", Description: "UUID of the Access group", UUID: true}},
		Schema:      tools.IdentifiedObject,
	},
	{
		Name: "access_policy_test_start",
		Description: "Start a test of Access policies against the users of the account. " +
			"Poll the result with access_policy_test_get",
		Method: http.MethodPost,
		Path:   "/access/policy-tests",
		BodyParams: []mcp.ToolOption{
			mcp.WithArray("policies",
				mcp.Required(),
				mcp.Description("UUIDs of the reusable policies to test"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		},
		Body:   policyTestBody,
		Schema: tools.ObjectResult,
	},
	{
		Name:        "access_policy_test_get",
		Description: "Get the status and result counts of an Access policy test",
		Path:        "/access/policy-tests/{policy_test_id}",
		PathParams:  []tools.PathParam{{Name: "policy_test_id", Description: "ID returned by access_policy_test_start", UUID: true}},
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_tags_list",
		Description: "List Access application tags",
		Path:        "/access/tags",
		Schema:      tools.ListResult,
	},
	{
		Name:        "access_tag_get",
		Description: "Get an Access application tag",
		Path:        "/access/tags/{tag_name}",
		PathParams:  []tools.PathParam{{Name: "tag_name", Description: "Name of the tag"}},
		Schema:      tools.ObjectResult,
	},
}

// CredentialEndpoints cover service tokens, certificates and signing keys.
// Service token secrets are masked on output.
var CredentialEndpoints = []tools.Endpoint{
	{
		Name:        "access_service_tokens_list",
		Description: "List Access service tokens",
		Path:        "/access/service_tokens",
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by token name"},
			{Name: "search", Description: "Search token names"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "access_service_token_get",
		Description: "Get an Access service token",
		Path:        "/access/service_tokens/{service_token_id}",
		PathParams:  []tools.PathParam{{Name: "service_token_id", Description: "UUID of the service token", UUID: true}},
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_certificates_list",
		Description: "List mTLS root certificates used by Access",
		Path:        "/access/certificates",
		Paginated:   true,
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_certificate_get",
		Description: "Get an mTLS root certificate used by Access",
		Path:        "/access/certificates/{certificate_id}",
		PathParams:  []tools.PathParam{{Name: "certificate_id", Description: "UUID of the certificate", UUID: true}},
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_keys_get",
		Description: "Get the Access signing key rotation settings",
		Path:        "/access/keys",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_gateway_ca_list",
		Description: "List the SSH certificate authorities used by Gateway for Access",
		Path:        "/access/gateway_ca",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_bookmarks_list",
		Description: "List Access bookmark applications",
		Path:        "/access/bookmarks",
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_bookmark_get",
		Description: "Get an Access bookmark application",
		Path:        "/access/bookmarks/{bookmark_id}",
		PathParams:  []tools.PathParam{{Name: "bookmark_id", Description: "UUID of the bookmark", UUID: true}},
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_custom_pages_list",
		Description: "List Access custom pages",
		Path:        "/access/custom_pages",
		Schema:      tools.ListResult,
	},
	{
		Name:        "access_custom_page_get",
		Description: "Get an Access custom page",
		Path:        "/access/custom_pages/{custom_page_id}",
		PathParams:  []tools.PathParam{{Name: "custom_page_id", Description: "UUID of the custom page", UUID: true}},
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_targets_list",
		Description: "List infrastructure targets protected by Access",
		Path:        "/infrastructure/targets",
		Query: []tools.QueryParam{
			{Name: "hostname", Description: "Filter by exact hostname"},
			{Name: "hostname_contains", Description: "Filter by partial hostname"},
			{Name: "ip_v4", Description: "Filter by IPv4 address"},
			{Name: "ip_v6", Description: "Filter by IPv6 address"},
			{Name: "virtual_network_id", Description: "Filter by virtual network UUID"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "access_target_get",
		Description: "Get an infrastructure target",
		Path:        "/infrastructure/targets/{target_id}",
		PathParams:  []tools.PathParam{{Name: "target_id", Description: "UUID of the target", UUID: true}},
		Schema:      tools.IdentifiedObject,
	},
}

// IdentityEndpoints cover identity providers, the Zero Trust organization
// and user risk scoring.
var IdentityEndpoints = []tools.Endpoint{
	{
		Name:        "access_identity_providers_list",
		Description: "List the identity providers configured for Access",
		Path:        "/access/identity_providers",
		Paginated:   true,
		Schema:      tools.IdentifiedList,
	},
	{
		Name:        "access_identity_provider_get",
		Description: "Get an identity provider",
		Path:        "/access/identity_providers/{idp_id}",
		PathParams:  uuidParams("idp_id"),
		Schema:      tools.IdentifiedObject,
	},
	{
		Name:        "access_identity_provider_scim_groups_list",
		Description: "List the SCIM groups provisioned by an identity provider",
		Path:        "/access/identity_providers/{idp_id}/scim/groups",
		PathParams:  uuidParams("idp_id"),
		Query: []tools.QueryParam{
			{Name: "name", Description: "Filter by group display name"},
			{Name: "cf_resource_id", Description: "Filter by Cloudflare group id"},
			{Name: "idp_resource_id", Description: "Filter by identity provider group id"},
		},
		Paginated: true,
		Schema:    tools.ListResult,
	},
	{
		Name:        "access_identity_provider_scim_users_list",
		Description: "List the SCIM users provisioned by an identity provider",
		Path:        "/access/identity_providers/{idp_id}/scim/users",
		PathParams:  uuidParams("idp_id"),
		Query: []tools.QueryParam{
			{Name: "email", Description: "Filter by email"},
			{Name: "name", Description: "Filter by name"},
			{Name: "username", Description: "Filter by username"},
			{Name: "cf_resource_id", Description: "Filter by Cloudflare user id"},
			{Name: "idp_resource_id", Description: "Filter by identity provider user id"},
		},
		Paginated: true,
		Schema:    tools.ListResult,
	},
	{
		Name:        "access_organization_get",
		Description: "Get the Zero Trust organization settings",
		Path:        "/access/organizations",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_organization_doh_get",
		Description: "Get the DNS over HTTPS settings of the Zero Trust organization",
		Path:        "/access/organizations/doh",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_risk_scoring_behaviors_get",
		Description: "Get the behaviors that feed user risk scores",
		Path:        "/zt_risk_scoring/behaviors",
		Schema:      tools.ObjectResult,
	},
	{
		Name:        "access_risk_score_get",
		Description: "Get the risk score and recent risk events of a user",
		Path:        "/zt_risk_scoring/{user_id}",
		PathParams:  uuidParams("user_id"),
		Schema:      tools.ObjectResult,
	},
}

// UserEndpoints cover Zero Trust users and their sessions.
var UserEndpoints = []tools.Endpoint{
	{
		Name:        "access_users_list",
		Description: "List Zero Trust users",
		Path:        "/access/users",
		Query: []tools.QueryParam{
			{Name: "email", Description: "Filter by email"},
			{Name: "name", Description: "Filter by name"},
			{Name: "search", Description: "Search name and email"},
		},
		Paginated: true,
		Schema:    tools.IdentifiedList,
	},
	{
		Name:        "access_user_failed_logins_list",
		Description: "List recent failed Access logins of a user",
		Path:        "/access/users/{user_id}/failed_logins",
		PathParams:  uuidParams("user_id"),
		Schema:      tools.ListResult,
	},
	{
		Name:        "access_user_active_sessions_list",
		Description: "List the active Access sessions of a user",
		Path:        "/access/users/{user_id}/active_sessions",
		PathParams:  uuidParams("user_id"),
		Schema:      tools.ListResult,
	},
	{
		Name:        "access_user_active_session_get",
		Description: "Get one active Access session of a user",
		Path:        "/access/users/{user_id}/active_sessions/{nonce}",
		PathParams: append(uuidParams("user_id"),
			tools.PathParam{Name: "nonce", Description: "Nonce of the session"}),
		Schema: tools.ObjectResult,
	},
	{
		Name:        "access_user_last_seen_identity_get",
		Description: "Get the identity a user presented at their last Access login",
		Path:        "/access/users/{user_id}/last_seen_identity",
		PathParams:  uuidParams("user_id"),
		Schema:      tools.ObjectResult,
	},
}

// LogEndpoints cover Access request and SCIM provisioning logs.
var LogEndpoints = []tools.Endpoint{
	{
		Name:        "access_logs_requests_list",
		Description: "List Access authentication requests",
		Path:        "/access/logs/access_requests",
		Query: []tools.QueryParam{
			{Name: "since", Description: "Earliest event time, RFC 3339"},
			{Name: "until", Description: "Latest event time, RFC 3339"},
			{Name: "direction", Description: "Sort order by time", Enum: []string{"desc", "asc"}},
			{Name: "limit", Description: "Maximum number of events", Kind: tools.ArgNumber},
		},
		Schema: tools.ListResult,
	},
	{
		Name:        "access_logs_scim_updates_list",
		Description: "List SCIM provisioning updates received from identity providers",
		Path:        "/access/logs/scim/updates",
		Query: []tools.QueryParam{
			{Name: "idp_id", Description: "UUIDs of the identity providers", Kind: tools.ArgStringList},
			{Name: "since", Description: "Earliest update time, RFC 3339"},
			{Name: "until", Description: "Latest update time, RFC 3339"},
			{Name: "status", Description: "Filter by update status", Enum: []string{"FAILURE", "SUCCESS"}},
			{Name: "resource_type", Description: "Filter by SCIM resource type", Enum: []string{"USER", "GROUP"}},
			{Name: "limit", Description: "Maximum number of updates", Kind: tools.ArgNumber},
		},
		Schema: tools.ListResult,
	},
}

// policyTestBody builds {"policies": [...]}, requiring at least one UUID.
func policyTestBody(request mcp.CallToolRequest) (any, error) {
	policies, err := tools.OptionalStringSlice(request, "policies")
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, tools.InvalidArgument("policies must list at least one policy")
	}
	for _, id := range policies {
		if _, err := uuid.Parse(id); err != nil {
			return nil, tools.InvalidArgument("policies must be UUIDs, got %q", id)
		}
	}
	return map[string]any{"policies": policies}, nil
}
