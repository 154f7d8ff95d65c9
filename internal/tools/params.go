package tools

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
)

// PaginationParams returns the page and size parameters for a paginated
// tool. sizeParam is the argument name, matching the query parameter the
// endpoint expects (per_page or page_size).
//
// Usage in tool registration:
//
//	opts := []mcp.ToolOption{
//	    mcp.WithDescription("..."),
//	}
//	opts = append(opts, tools.PaginationParams(apigateway.SizeParamPerPage)...)
//	tool := mcp.NewTool("tool_name", opts...)
func PaginationParams(sizeParam string) []mcp.ToolOption {
	if sizeParam == "" {
		sizeParam = apigateway.SizeParamPerPage
	}
	return []mcp.ToolOption{
		mcp.WithNumber("page",
			mcp.Description("Page number, starting at 1 (default 1)"),
			mcp.Min(1),
		),
		mcp.WithNumber(sizeParam,
			mcp.Description("Results per page (default "+strconv.Itoa(apigateway.DefaultPageSize)+
				", max "+strconv.Itoa(apigateway.MaxPageSize)+")"),
			mcp.Min(1),
			mcp.Max(apigateway.MaxPageSize),
		),
	}
}

// ParsePagination reads the page and size arguments declared by
// PaginationParams. Absent values are left zero so the gateway applies its
// defaults.
func ParsePagination(request mcp.CallToolRequest, sizeParam string) (*apigateway.Pagination, error) {
	if sizeParam == "" {
		sizeParam = apigateway.SizeParamPerPage
	}
	page, err := OptionalInt(request, "page")
	if err != nil {
		return nil, err
	}
	size, err := OptionalInt(request, sizeParam)
	if err != nil {
		return nil, err
	}
	if page < 0 {
		return nil, InvalidArgument("page must be at least 1")
	}
	if size < 0 || size > apigateway.MaxPageSize {
		return nil, InvalidArgument("%s must be between 1 and %d", sizeParam, apigateway.MaxPageSize)
	}
	return &apigateway.Pagination{Page: page, PageSize: size, SizeParam: sizeParam}, nil
}

// RequiredString returns a non-blank string argument.
func RequiredString(request mcp.CallToolRequest, name string) (string, error) {
	v, ok := request.GetArguments()[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", InvalidArgument("%s is required", name)
	}
	return strings.TrimSpace(v), nil
}

// OptionalString returns a string argument or "".
func OptionalString(request mcp.CallToolRequest, name string) string {
	return strings.TrimSpace(request.GetString(name, ""))
}

// RequiredUUID returns a required argument that must be a UUID.
func RequiredUUID(request mcp.CallToolRequest, name string) (string, error) {
	v, err := RequiredString(request, name)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", InvalidArgument("%s must be a UUID", name)
	}
	return v, nil
}

// OptionalInt returns an integer argument, 0 when absent. JSON numbers
// arrive as float64; fractional values are rejected.
func OptionalInt(request mcp.CallToolRequest, name string) (int, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, InvalidArgument("%s must be an integer", name)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, InvalidArgument("%s must be an integer", name)
		}
		return n, nil
	default:
		return 0, InvalidArgument("%s must be an integer", name)
	}
}

// OptionalBool returns a tri-state boolean argument: nil when absent.
func OptionalBool(request mcp.CallToolRequest, name string) (*bool, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return &v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, InvalidArgument("%s must be a boolean", name)
		}
		return &b, nil
	default:
		return nil, InvalidArgument("%s must be a boolean", name)
	}
}

// OptionalStringSlice returns a string array argument. A single string is
// accepted as a one-element list.
func OptionalStringSlice(request mcp.CallToolRequest, name string) ([]string, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, InvalidArgument("%s must be a list of strings", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, InvalidArgument("%s must be a list of strings", name)
	}
}

// OneOf checks that value, when set, is one of allowed. An empty allowed
// list accepts any value.
func OneOf(name, value string, allowed []string) error {
	if value == "" || len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return InvalidArgument("%s must be one of %s", name, strings.Join(allowed, ", "))
}
