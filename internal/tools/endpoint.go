package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// ArgKind is the JSON type of a query argument.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgBool
	ArgNumber
	ArgStringList
)

// PathParam is a required argument substituted into an endpoint path.
type PathParam struct {
	Name        string
	Description string

	// UUID rejects values that are not UUIDs before calling the API.
	UUID bool
}

// QueryParam is an optional argument forwarded as a query parameter of the
// same name.
type QueryParam struct {
	Name        string
	Description string
	Kind        ArgKind
	Enum        []string
}

// Endpoint declares a tenant-scoped tool that proxies one API call. Path is
// relative to /accounts/{account_id} and may hold {name} placeholders, one
// per PathParams entry.
type Endpoint struct {
	Name        string
	Description string

	// Method defaults to GET.
	Method string
	Path   string

	PathParams []PathParam
	Query      []QueryParam

	// Paginated adds page and size arguments. SizeParam defaults to per_page.
	Paginated bool
	SizeParam string

	// Schema validates the result field.
	Schema *apigateway.Schema

	// BodyParams declares the arguments Body reads.
	BodyParams []mcp.ToolOption
	Body       func(request mcp.CallToolRequest) (any, error)
}

func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}

// Tool builds the MCP tool schema.
func (e Endpoint) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(e.Description),
		mcp.WithReadOnlyHintAnnotation(e.method() == http.MethodGet),
	}
	for _, p := range e.PathParams {
		opts = append(opts, mcp.WithString(p.Name, mcp.Required(), mcp.Description(p.Description)))
	}
	for _, q := range e.Query {
		opts = append(opts, q.option())
	}
	if e.Paginated {
		opts = append(opts, PaginationParams(e.SizeParam)...)
	}
	opts = append(opts, e.BodyParams...)
	return mcp.NewTool(e.Name, opts...)
}

func (q QueryParam) option() mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(q.Description)}
	switch q.Kind {
	case ArgBool:
		return mcp.WithBoolean(q.Name, props...)
	case ArgNumber:
		return mcp.WithNumber(q.Name, props...)
	case ArgStringList:
		props = append(props, mcp.Items(map[string]any{"type": "string"}))
		return mcp.WithArray(q.Name, props...)
	default:
		if len(q.Enum) > 0 {
			props = append(props, mcp.Enum(q.Enum...))
		}
		return mcp.WithString(q.Name, props...)
	}
}

// Definition returns the guarded tool definition.
func (e Endpoint) Definition() Definition {
	return Definition{Tool: e.Tool(), Handler: Guarded(e.handle)}
}

func (e Endpoint) validate() error {
	if e.Name == "" || e.Path == "" {
		return fmt.Errorf("endpoint %q: name and path are required", e.Name)
	}
	path := e.Path
	for _, p := range e.PathParams {
		placeholder := "{" + p.Name + "}"
		if !strings.Contains(path, placeholder) {
			return fmt.Errorf("endpoint %s: path %s has no %s placeholder", e.Name, e.Path, placeholder)
		}
		path = strings.ReplaceAll(path, placeholder, "x")
	}
	if strings.ContainsAny(path, "{}") {
		return fmt.Errorf("endpoint %s: path %s has undeclared placeholders", e.Name, e.Path)
	}
	if e.method() != http.MethodGet && e.Body == nil {
		return fmt.Errorf("endpoint %s: %s requires a body builder", e.Name, e.method())
	}
	return nil
}

func (e Endpoint) handle(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, scope account.Scope) (*mcp.CallToolResult, error) {
	if blocked := CheckWriteAllowed(sc, e.Name, e.method()); blocked != nil {
		return blocked, nil
	}
	spec, err := e.callSpec(request)
	if err != nil {
		return ErrorResult(err), nil
	}
	spec.AccountID = scope.AccountID
	spec.Credential = scope.Credential

	env, err := sc.APIClient().Call(ctx, spec)
	if err != nil {
		return ErrorResult(err), nil
	}
	return RenderEnvelope(sc, env), nil
}

// callSpec builds everything but the account and credential.
func (e Endpoint) callSpec(request mcp.CallToolRequest) (apigateway.CallSpec, error) {
	spec := apigateway.CallSpec{Method: e.method(), Schema: e.Schema}

	path := e.Path
	for _, p := range e.PathParams {
		var (
			v   string
			err error
		)
		if p.UUID {
			v, err = RequiredUUID(request, p.Name)
		} else {
			v, err = RequiredString(request, p.Name)
		}
		if err != nil {
			return spec, err
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(v))
	}
	spec.Endpoint = path

	if len(e.Query) > 0 {
		spec.Query = make(map[string]any, len(e.Query))
	}
	for _, q := range e.Query {
		v, err := q.value(request)
		if err != nil {
			return spec, err
		}
		spec.Query[q.Name] = v
	}

	if e.Paginated {
		p, err := ParsePagination(request, e.SizeParam)
		if err != nil {
			return spec, err
		}
		spec.Pagination = p
	}

	if e.Body != nil {
		body, err := e.Body(request)
		if err != nil {
			return spec, err
		}
		spec.Body = body
	}
	return spec, nil
}

func (q QueryParam) value(request mcp.CallToolRequest) (any, error) {
	switch q.Kind {
	case ArgBool:
		return OptionalBool(request, q.Name)
	case ArgNumber:
		n, err := OptionalInt(request, q.Name)
		if err != nil || n == 0 {
			return nil, err
		}
		return n, nil
	case ArgStringList:
		return OptionalStringSlice(request, q.Name)
	default:
		v := OptionalString(request, q.Name)
		if err := OneOf(q.Name, v, q.Enum); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// RegisterEndpoints validates and registers endpoint tools.
func RegisterEndpoints(r *Registry, endpoints []Endpoint) error {
	for _, e := range endpoints {
		if err := e.validate(); err != nil {
			return err
		}
		d := e.Definition()
		if err := r.Register(d.Tool, d.Handler); err != nil {
			return err
		}
	}
	return nil
}
