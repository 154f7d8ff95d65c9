package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-cloudflare-one/internal/server/middleware"
)

// Transport names accepted by NewHTTPServer.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a single response. Upstream calls time out
	// earlier, so this only catches stuck clients.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the default idle timeout for keepalive connections
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

// HTTPConfig configures the HTTP transports.
type HTTPConfig struct {
	// Transport is streamable-http or sse.
	Transport string

	// Addr is the listen address.
	Addr string

	// MCPEndpoint is the streamable HTTP endpoint path (default "/mcp").
	MCPEndpoint string

	// SSEEndpoint and MessageEndpoint are the SSE transport paths
	// (defaults "/sse" and "/message").
	SSEEndpoint     string
	MessageEndpoint string

	// DisableStreaming makes streamable HTTP answer with plain JSON bodies.
	DisableStreaming bool

	// AllowedOrigins is a comma separated CORS allow-list.
	AllowedOrigins string

	// EnableHSTS sends HSTS on plain HTTP, for TLS terminating proxies.
	EnableHSTS bool

	// MaxRequestBytes limits MCP request bodies. Zero uses the middleware
	// default; a negative value disables the limit.
	MaxRequestBytes int64
}

func (c *HTTPConfig) applyDefaults() {
	if c.Transport == "" {
		c.Transport = TransportStreamableHTTP
	}
	if c.MCPEndpoint == "" {
		c.MCPEndpoint = "/mcp"
	}
	if c.SSEEndpoint == "" {
		c.SSEEndpoint = "/sse"
	}
	if c.MessageEndpoint == "" {
		c.MessageEndpoint = "/message"
	}
	if c.MaxRequestBytes == 0 {
		c.MaxRequestBytes = middleware.DefaultMaxRequestBytes
	}
}

// HTTPServer serves an MCP server over streamable HTTP or SSE with bearer
// authentication, health endpoints and request metrics.
type HTTPServer struct {
	config         HTTPConfig
	allowedOrigins []string
	mcpServer      *mcpserver.MCPServer
	sc             *ServerContext
	health         *HealthChecker
	httpServer     *http.Server

	// baseCtx parents every request context. Cancelling it ends open SSE
	// streams so Shutdown does not wait for them.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewHTTPServer validates the configuration and builds the handler tree.
// The server context must carry an identity resolver.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, errors.New("MCP server is required")
	}
	if sc == nil {
		return nil, errors.New("server context is required")
	}
	if sc.IdentityResolver() == nil {
		return nil, errors.New("HTTP transports require an identity resolver")
	}

	config.applyDefaults()
	if config.Transport != TransportStreamableHTTP && config.Transport != TransportSSE {
		return nil, fmt.Errorf("unsupported server type: %s", config.Transport)
	}

	allowedOrigins, err := middleware.ValidateAllowedOrigins(config.AllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed origins: %w", err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &HTTPServer{
		config:         config,
		allowedOrigins: allowedOrigins,
		mcpServer:      mcpSrv,
		sc:             sc,
		health:         NewHealthChecker(sc),
		baseCtx:        baseCtx,
		cancelBase:     cancel,
	}
	s.health.SetTransport(config.Transport)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	// SSE responses stay open for the session lifetime.
	if config.Transport == TransportStreamableHTTP {
		s.httpServer.WriteTimeout = DefaultWriteTimeout
	}

	return s, nil
}

// HealthChecker returns the checker behind /healthz and /readyz.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Endpoints lists the MCP endpoint paths for start-up logging.
func (s *HTTPServer) Endpoints() []string {
	if s.config.Transport == TransportSSE {
		return []string{s.config.SSEEndpoint, s.config.MessageEndpoint}
	}
	return []string{s.config.MCPEndpoint}
}

// Handler builds the full middleware chain around the MCP and health routes.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)
	s.setupMCPRoutes(mux)

	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(s.sc.Metrics(), s.routes()...)(handler)
	handler = middleware.CORS(s.allowedOrigins)(handler)
	handler = middleware.SecurityHeaders(middleware.SecurityHeadersConfig{EnableHSTS: s.config.EnableHSTS})(handler)
	return handler
}

// routes lists every path the handler serves, for metric labels.
func (s *HTTPServer) routes() []string {
	return append(s.Endpoints(), "/healthz", "/healthz/detailed", "/readyz")
}

// setupMCPRoutes registers MCP endpoints on the mux behind authentication.
func (s *HTTPServer) setupMCPRoutes(mux *http.ServeMux) {
	protect := func(h http.Handler) http.Handler {
		h = middleware.BearerAuth(s.sc.IdentityResolver(), s.sc.slogLogger())(h)
		return middleware.MaxRequestSize(s.config.MaxRequestBytes)(h)
	}

	switch s.config.Transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint(s.config.SSEEndpoint),
			mcpserver.WithMessageEndpoint(s.config.MessageEndpoint),
		)
		mux.Handle(s.config.SSEEndpoint, protect(sseServer.SSEHandler()))
		mux.Handle(s.config.MessageEndpoint, protect(sseServer.MessageHandler()))
	default:
		opts := []mcpserver.StreamableHTTPOption{mcpserver.WithEndpointPath(s.config.MCPEndpoint)}
		if s.config.DisableStreaming {
			opts = append(opts, mcpserver.WithDisableStreaming(true))
		}
		mux.Handle(s.config.MCPEndpoint, protect(mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)))
	}
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *HTTPServer) Start() error {
	slog.Info("HTTP server starting",
		"transport", s.config.Transport,
		"addr", s.config.Addr,
		"mcp_endpoints", s.Endpoints(),
		"health_endpoints", []string{"/healthz", "/readyz", "/healthz/detailed"})
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and waits for in-flight requests up to
// the context deadline. Open SSE streams are ended first.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	defer s.cancelBase()
	if s.config.Transport == TransportSSE {
		s.cancelBase()
	}
	return s.httpServer.Shutdown(ctx)
}
