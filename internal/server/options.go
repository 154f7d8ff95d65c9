package server

import (
	"errors"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithAPIClient sets the Cloudflare API gateway for the ServerContext.
func WithAPIClient(client *apigateway.Client) Option {
	return func(sc *ServerContext) error {
		if client == nil {
			return ErrMissingAPIClient
		}
		sc.apiClient = client
		return nil
	}
}

// WithAccountStore sets the active account store for the ServerContext.
func WithAccountStore(store accountstore.Store) Option {
	return func(sc *ServerContext) error {
		if store == nil {
			return ErrMissingAccountStore
		}
		sc.store = store
		return nil
	}
}

// WithIdentityResolver sets the resolver used by the HTTP transports to turn
// bearer credentials into principals.
func WithIdentityResolver(resolver *identity.Resolver) Option {
	return func(sc *ServerContext) error {
		sc.identity = resolver
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ServerName = name
		return nil
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.LogLevel = level
		return nil
	}
}

// WithToolsets restricts the registered tool categories.
func WithToolsets(toolsets []string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		if toolsets != nil {
			sc.config.Toolsets = make([]string, len(toolsets))
			copy(sc.config.Toolsets, toolsets)
		}
		return nil
	}
}

// WithReadOnly enables or disables read-only mode.
func WithReadOnly(enabled bool) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ReadOnly = enabled
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingAPIClient    = errors.New("cloudflare API client is required")
	ErrMissingAccountStore = errors.New("active account store is required")
	ErrMissingLogger       = errors.New("logger is required")
	ErrMissingConfig       = errors.New("configuration is required")
	ErrServerShutdown      = errors.New("server context has been shutdown")
)
