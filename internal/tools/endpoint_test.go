package tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/testdata"
)

var ruleSchema = apigateway.MustCompileSchema("test_rule", `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {"id": {"type": "string"}, "name": {"type": "string"}}
}`)

func TestEndpoint_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint Endpoint
		wantErr  bool
	}{
		{
			name:     "plain list",
			endpoint: Endpoint{Name: "rules_list", Path: "/gateway/rules"},
		},
		{
			name: "declared placeholder",
			endpoint: Endpoint{Name: "rule_get", Path: "/gateway/rules/{rule_id}",
				PathParams: []PathParam{{Name: "rule_id"}}},
		},
		{
			name:     "undeclared placeholder",
			endpoint: Endpoint{Name: "rule_get", Path: "/gateway/rules/{rule_id}"},
			wantErr:  true,
		},
		{
			name: "param without placeholder",
			endpoint: Endpoint{Name: "rule_get", Path: "/gateway/rules",
				PathParams: []PathParam{{Name: "rule_id"}}},
			wantErr: true,
		},
		{
			name:     "post without body",
			endpoint: Endpoint{Name: "validate", Method: http.MethodPost, Path: "/dlp/patterns/validate"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.endpoint.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEndpoint_Tool(t *testing.T) {
	e := Endpoint{
		Name:        "email_search",
		Description: "Search",
		Path:        "/email-security/investigate",
		Query: []QueryParam{
			{Name: "query", Description: "terms"},
			{Name: "final_disposition", Enum: []string{"MALICIOUS", "BENIGN"}},
			{Name: "detections_only", Kind: ArgBool},
		},
		Paginated: true,
	}

	tool := e.Tool()
	assert.Equal(t, "email_search", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "query")
	assert.Contains(t, tool.InputSchema.Properties, "final_disposition")
	assert.Contains(t, tool.InputSchema.Properties, "detections_only")
	assert.Contains(t, tool.InputSchema.Properties, "page")
	assert.Contains(t, tool.InputSchema.Properties, "per_page")
}

func TestRegisterEndpoints_GetWithPathAndQuery(t *testing.T) {
	upstream := testdata.NewUpstream(t)
	upstream.OK(http.MethodGet, "/accounts/acc-1/gateway/lists/a b/items",
		[]map[string]any{{"value": "example.com"}},
		&apigateway.ResultInfo{Page: 2, PerPage: 10, Count: 1, TotalCount: 11})

	r := NewRegistry(newMCPServer(), testdata.NewServerContext(t, upstream))
	require.NoError(t, RegisterEndpoints(r, []Endpoint{{
		Name:       "list_items",
		Path:       "/gateway/lists/{list_id}/items",
		PathParams: []PathParam{{Name: "list_id"}},
		Query:      []QueryParam{{Name: "search"}, {Name: "enabled", Kind: ArgBool}},
		Paginated:  true,
	}}))

	h, ok := r.Handler("list_items")
	require.True(t, ok)
	result, err := h(testdata.TenantContext("acc-1"), testdata.Request("list_items", map[string]any{
		"list_id":  "a b",
		"search":   "example",
		"page":     float64(2),
		"per_page": float64(10),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, testdata.ResultText(t, result))

	req := upstream.LastRequest()
	assert.Equal(t, "/accounts/acc-1/gateway/lists/a b/items", req.Path)
	assert.Equal(t, "example", req.Query.Get("search"))
	assert.Equal(t, "2", req.Query.Get("page"))
	assert.Equal(t, "10", req.Query.Get("per_page"))
	assert.False(t, req.Query.Has("enabled"), "unset optional arguments are not forwarded")
	assert.Equal(t, "Bearer "+testdata.Token, req.Authorization)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(testdata.ResultText(t, result)), &body))
	assert.Equal(t, float64(11), body["result_info"].(map[string]any)["total_count"])
}

func TestRegisterEndpoints_PostBody(t *testing.T) {
	upstream := testdata.NewUpstream(t)
	upstream.OK(http.MethodPost, "/accounts/acc-1/dlp/patterns/validate", map[string]any{"valid": true}, nil)

	r := NewRegistry(newMCPServer(), testdata.NewServerContext(t, upstream))
	require.NoError(t, RegisterEndpoints(r, []Endpoint{{
		Name:       "validate",
		Method:     http.MethodPost,
		Path:       "/dlp/patterns/validate",
		BodyParams: []mcp.ToolOption{mcp.WithString("regex", mcp.Required())},
		Body: func(request mcp.CallToolRequest) (any, error) {
			regex, err := RequiredString(request, "regex")
			if err != nil {
				return nil, err
			}
			return map[string]any{"regex": regex}, nil
		},
	}}))

	tool, _ := r.Tool("validate")
	assert.Contains(t, tool.InputSchema.Required, "regex")

	h, _ := r.Handler("validate")
	result, err := h(testdata.TenantContext("acc-1"), testdata.Request("validate", map[string]any{"regex": "^[0-9]{16}$"}))
	require.NoError(t, err)
	require.False(t, result.IsError, testdata.ResultText(t, result))

	req := upstream.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"regex":"^[0-9]{16}$"}`, string(req.Body))
}

func TestRegisterEndpoints_RejectsBadArgumentsBeforeCalling(t *testing.T) {
	upstream := testdata.NewUpstream(t)
	r := NewRegistry(newMCPServer(), testdata.NewServerContext(t, upstream))
	require.NoError(t, RegisterEndpoints(r, []Endpoint{{
		Name:       "instances",
		Path:       "/data-security/posture/findings/{finding_id}/instances",
		PathParams: []PathParam{{Name: "finding_id", UUID: true}},
	}}))

	h, _ := r.Handler("instances")
	result, err := h(testdata.TenantContext("acc-1"), testdata.Request("instances", map[string]any{"finding_id": "../../user"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testdata.ResultText(t, result), "must be a UUID")
	assert.Empty(t, upstream.Requests())
}

func TestRegisterEndpoints_SchemaMismatch(t *testing.T) {
	upstream := testdata.NewUpstream(t)
	upstream.OK(http.MethodGet, "/accounts/acc-1/gateway/rules/r1", map[string]any{"id": "r1"}, nil)

	r := NewRegistry(newMCPServer(), testdata.NewServerContext(t, upstream))
	require.NoError(t, RegisterEndpoints(r, []Endpoint{{
		Name:       "rule_get",
		Path:       "/gateway/rules/{rule_id}",
		PathParams: []PathParam{{Name: "rule_id"}},
		Schema:     ruleSchema,
	}}))

	h, _ := r.Handler("rule_get")
	result, err := h(testdata.TenantContext("acc-1"), testdata.Request("rule_get", map[string]any{"rule_id": "r1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testdata.ResultText(t, result), "unexpected shape")
}

func TestRegisterEndpoints_RequiresActiveAccount(t *testing.T) {
	upstream := testdata.NewUpstream(t)
	r := NewRegistry(newMCPServer(), testdata.NewServerContext(t, upstream))
	require.NoError(t, RegisterEndpoints(r, []Endpoint{{Name: "rules_list", Path: "/gateway/rules"}}))

	h, _ := r.Handler("rules_list")
	result, err := h(testdata.UserContext("user-1"), testdata.Request("rules_list", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testdata.ResultText(t, result), "No active account selected")
	assert.Empty(t, upstream.Requests())
}
