package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/giantswarm/mcp-cloudflare-one/internal/account"
	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/output"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	// Core dependencies
	logger    Logger
	config    *Config
	apiClient *apigateway.Client

	// Active account state. The resolver and guard are derived from the store
	// once all options are applied.
	store    accountstore.Store
	resolver *account.Resolver
	guard    *account.Guard

	// identity is nil for stdio, where the principal is fixed at start-up.
	identity *identity.Resolver

	instrumentationProvider *instrumentation.Provider

	output *output.Processor

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: logging.DefaultLogger(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	sc.resolver = account.NewResolver(sc.store)
	guardOpts := []account.GuardOption{account.WithGuardLogger(sc.slogLogger())}
	if sc.instrumentationProvider != nil {
		guardOpts = append(guardOpts, account.WithDecisionRecorder(sc.instrumentationProvider.Metrics()))
	}
	sc.guard = account.NewGuard(sc.resolver, guardOpts...)
	sc.output = output.NewProcessor(&output.Config{
		MaxResponseBytes: sc.config.MaxResponseBytes,
		MaskSecrets:      true,
	})

	return sc, nil
}

// Context returns the server's context, cancelled on shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() Logger {
	return sc.logger
}

// Config returns a copy of the server configuration.
func (sc *ServerContext) Config() *Config {
	return sc.config.Clone()
}

// APIClient returns the Cloudflare API gateway.
func (sc *ServerContext) APIClient() *apigateway.Client {
	return sc.apiClient
}

// AccountStore returns the active account store.
func (sc *ServerContext) AccountStore() accountstore.Store {
	return sc.store
}

// AccountResolver returns the resolver that maps principals to accounts.
func (sc *ServerContext) AccountResolver() *account.Resolver {
	return sc.resolver
}

// AccountGuard returns the guard wrapped around tenant-scoped tools.
func (sc *ServerContext) AccountGuard() *account.Guard {
	return sc.guard
}

// IdentityResolver returns the credential to principal resolver, or nil when
// the transport fixes the principal at start-up.
func (sc *ServerContext) IdentityResolver() *identity.Resolver {
	return sc.identity
}

// InstrumentationProvider returns the instrumentation provider, possibly nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.instrumentationProvider
}

// Metrics returns the metrics recorder. It is nil when instrumentation was
// not configured; all Metrics methods accept a nil receiver.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instrumentationProvider == nil {
		return nil
	}
	return sc.instrumentationProvider.Metrics()
}

// OutputProcessor returns the processor that masks and bounds tool output.
func (sc *ServerContext) OutputProcessor() *output.Processor {
	return sc.output
}

// AuditLogger returns the tool invocation audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	if sc.instrumentationProvider != nil {
		return sc.instrumentationProvider.AuditLogger()
	}
	return instrumentation.NewAuditLogger(sc.slogLogger().With("component", "audit"))
}

// Shutdown cancels the server context and releases the identity cache and
// the active account store. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")
	sc.cancel()

	var errs []error
	if sc.identity != nil {
		if err := sc.identity.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close identity resolver: %w", err))
		}
	}
	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close account store: %w", err))
		}
	}

	sc.shutdown = true

	sc.logger.Info("Server context shutdown complete")
	return errors.Join(errs...)
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.apiClient == nil {
		return ErrMissingAPIClient
	}
	if sc.store == nil {
		return ErrMissingAccountStore
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// slogLogger returns the underlying slog logger when the configured logger
// is a SlogAdapter, otherwise the default slog logger.
func (sc *ServerContext) slogLogger() *slog.Logger {
	if a, ok := sc.logger.(*logging.SlogAdapter); ok {
		return a.Logger()
	}
	return slog.Default()
}

// Logger defines the interface for logging operations.
type Logger = logging.Logger

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName   string `json:"serverName"`
	Version      string `json:"version"`
	Instructions string `json:"instructions"`

	// Toolsets lists the enabled tool categories. Empty enables all of them.
	// Account tools are always registered.
	Toolsets []string `json:"toolsets"`

	// Cloudflare API settings
	APIBaseURL     string        `json:"apiBaseURL"`
	RequestTimeout time.Duration `json:"requestTimeout"`

	// ReadOnly refuses tools that issue anything but GET requests.
	ReadOnly bool `json:"readOnly"`

	// MaxResponseBytes bounds rendered tool output. Zero uses the output
	// package default.
	MaxResponseBytes int `json:"maxResponseBytes"`

	// SessionStore names the active account store backend, for health output.
	SessionStore string `json:"sessionStore"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// DefaultInstructions is sent to MCP clients on initialize.
const DefaultInstructions = `Cloudflare One tools operate on a single Cloudflare account at a time.
Call accounts_list to see the accounts available to you, then confirm with the user which account to use before calling set_active_account.
Never pick an account on the user's behalf. Tokens bound to a single account do not need set_active_account.`

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:       "mcp-cloudflare-one",
		Version:          "0.1.0",
		Instructions:     DefaultInstructions,
		APIBaseURL:       apigateway.DefaultBaseURL,
		RequestTimeout:   apigateway.DefaultTimeout,
		MaxResponseBytes: output.DefaultMaxResponseBytes,
		SessionStore:     accountstore.BackendMemory,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if c.Toolsets != nil {
		clone.Toolsets = make([]string, len(c.Toolsets))
		copy(clone.Toolsets, c.Toolsets)
	}

	return &clone
}

// ToolsetEnabled reports whether the named toolset should be registered.
func (c *Config) ToolsetEnabled(name string) bool {
	if len(c.Toolsets) == 0 {
		return true
	}
	for _, t := range c.Toolsets {
		if t == name || t == "all" {
			return true
		}
	}
	return false
}
