package tools

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// ErrDuplicateTool is returned when two tools are registered under the same
// name. It is a programming error and fails server start-up.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Definition pairs a tool schema with its handler.
type Definition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// Registry adds tools to an MCP server, enforcing unique names and wrapping
// every handler with audit logging.
type Registry struct {
	srv      *mcpserver.MCPServer
	sc       *server.ServerContext
	tools    map[string]mcp.Tool
	handlers map[string]mcpserver.ToolHandlerFunc
}

// NewRegistry returns a Registry for srv.
func NewRegistry(srv *mcpserver.MCPServer, sc *server.ServerContext) *Registry {
	return &Registry{
		srv:      srv,
		sc:       sc,
		tools:    make(map[string]mcp.Tool),
		handlers: make(map[string]mcpserver.ToolHandlerFunc),
	}
}

// ServerContext returns the server context handed to every handler.
func (r *Registry) ServerContext() *server.ServerContext {
	return r.sc
}

// Register adds one tool.
func (r *Registry) Register(tool mcp.Tool, handler ToolHandler) error {
	if tool.Name == "" {
		return errors.New("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, tool.Name)
	}
	wrapped := WrapWithAuditLogging(tool.Name, handler, r.sc)
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = wrapped
	r.srv.AddTool(tool, wrapped)
	return nil
}

// RegisterAll registers defs in order and stops at the first error.
func (r *Registry) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if err := r.Register(def.Tool, def.Handler); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Tool returns the schema registered under name.
func (r *Registry) Tool(name string) (mcp.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Handler returns the wrapped handler registered under name, as the MCP
// server invokes it.
func (r *Registry) Handler(name string) (mcpserver.ToolHandlerFunc, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
