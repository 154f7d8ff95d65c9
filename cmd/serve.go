package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/identity"
	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/catalog"
	"github.com/giantswarm/mcp-cloudflare-one/internal/tools/output"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = server.TransportSSE
	transportStreamableHTTP = server.TransportStreamableHTTP
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		config      ServeConfig
		storeConfig = accountstore.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Cloudflare One server",
		Long: `Start the MCP Cloudflare One server to provide tools for Cloudflare
Zero Trust accounts via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Authentication:
  - stdio: the token from --api-token or CLOUDFLARE_API_TOKEN. With
    --account-id the token is treated as bound to that account.
  - HTTP transports: every request carries the caller's Cloudflare API token
    as a bearer credential. Account tokens also send X-Cloudflare-Account-ID.

Active account selection for user tokens is kept in the session store:
memory (default), redis, postgres or sqlite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Printf("Warning: could not load .env file: %v", err)
			}

			config.SessionStoreConfig = storeConfig
			loadServeEnvVars(cmd, &config)
			return runServe(config)
		},
	}

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
	cmd.Flags().BoolVar(&config.DisableStreaming, "disable-streaming", false, "Disable streaming for streamable-http transport")
	cmd.Flags().StringVar(&config.AllowedOrigins, "allowed-origins", "", "Comma separated CORS origins allowed to call the HTTP transports (can also be set via ALLOWED_ORIGINS env var)")
	cmd.Flags().BoolVar(&config.EnableHSTS, "enable-hsts", false, "Send Strict-Transport-Security, for deployments behind a TLS terminating proxy (can also be set via ENABLE_HSTS env var)")
	cmd.Flags().StringVar(&config.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address, used when instrumentation is enabled (can also be set via METRICS_ADDR env var)")

	// Cloudflare API flags
	cmd.Flags().StringVar(&config.APIBaseURL, "api-base-url", apigateway.DefaultBaseURL, "Cloudflare API base URL (can also be set via CLOUDFLARE_API_BASE_URL env var)")
	cmd.Flags().BoolVar(&config.AllowInsecureAPI, "allow-insecure-api-url", false, "Allow plain HTTP and private addresses for the API base URL (for local API mocks)")
	cmd.Flags().StringVar(&config.APIToken, "api-token", "", "Cloudflare API token for the stdio transport (can also be set via CLOUDFLARE_API_TOKEN env var)")
	cmd.Flags().StringVar(&config.AccountID, "account-id", "", "Account the stdio token is bound to (can also be set via CLOUDFLARE_ACCOUNT_ID env var)")
	cmd.Flags().DurationVar(&config.RequestTimeout, "request-timeout", apigateway.DefaultTimeout, "Timeout for a single Cloudflare API call")
	cmd.Flags().DurationVar(&config.IdentityCacheTTL, "identity-cache-ttl", identity.DefaultCacheConfig().TTL, "How long a verified token is trusted before it is checked again")
	cmd.Flags().StringSliceVar(&config.Toolsets, "toolsets", nil, fmt.Sprintf("Toolsets to enable (default all): %v (can also be set via TOOLSETS env var)", catalog.Toolsets()))
	cmd.Flags().IntVar(&config.MaxResponseBytes, "max-response-bytes", output.DefaultMaxResponseBytes, "Maximum size of a rendered tool result")
	cmd.Flags().BoolVar(&config.ReadOnly, "read-only", false, "Refuse tools that send anything but GET requests (can also be set via READ_ONLY env var)")
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging (default: false)")

	// Session store flags
	cmd.Flags().StringVar(&storeConfig.Backend, "session-store", accountstore.BackendMemory, "Active account store: memory, redis, postgres or sqlite (can also be set via SESSION_STORE env var)")
	cmd.Flags().StringVar(&storeConfig.RedisURL, "redis-url", "", "Redis URL, e.g. redis://redis:6379/0 (can also be set via REDIS_URL env var)")
	cmd.Flags().StringVar(&storeConfig.RedisKeyPrefix, "redis-key-prefix", accountstore.DefaultRedisKeyPrefix, "Prefix for Redis keys (can also be set via REDIS_KEY_PREFIX env var)")
	cmd.Flags().StringVar(&storeConfig.PostgresDSN, "postgres-dsn", "", "PostgreSQL DSN (can also be set via POSTGRES_DSN env var)")
	cmd.Flags().StringVar(&storeConfig.SQLitePath, "sqlite-path", storeConfig.SQLitePath, "SQLite database file (can also be set via SQLITE_PATH env var)")

	return cmd
}

// loadServeEnvVars fills settings from environment variables. Environment
// variables only apply when the matching flag was not set explicitly.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	changed := cmd.Flags().Changed

	stringEnv := func(flag string, target *string, envKey string) {
		if !changed(flag) {
			if v := os.Getenv(envKey); v != "" {
				*target = v
			}
		}
	}
	stringEnv("api-base-url", &config.APIBaseURL, "CLOUDFLARE_API_BASE_URL")
	stringEnv("allowed-origins", &config.AllowedOrigins, "ALLOWED_ORIGINS")
	stringEnv("metrics-addr", &config.MetricsAddr, "METRICS_ADDR")
	stringEnv("session-store", &config.SessionStoreConfig.Backend, "SESSION_STORE")
	stringEnv("redis-key-prefix", &config.SessionStoreConfig.RedisKeyPrefix, "REDIS_KEY_PREFIX")
	stringEnv("sqlite-path", &config.SessionStoreConfig.SQLitePath, "SQLITE_PATH")

	// Secrets and DSNs are never defaulted, so empty means unset.
	loadEnvIfEmpty(&config.APIToken, "CLOUDFLARE_API_TOKEN")
	loadEnvIfEmpty(&config.AccountID, "CLOUDFLARE_ACCOUNT_ID")
	loadEnvIfEmpty(&config.SessionStoreConfig.RedisURL, "REDIS_URL")
	loadEnvIfEmpty(&config.SessionStoreConfig.PostgresDSN, "POSTGRES_DSN")

	if !changed("enable-hsts") && os.Getenv("ENABLE_HSTS") == envValueTrue {
		config.EnableHSTS = true
	}
	if !changed("read-only") && os.Getenv("READ_ONLY") == envValueTrue {
		config.ReadOnly = true
	}
	if !changed("toolsets") {
		if v := os.Getenv("TOOLSETS"); v != "" {
			config.Toolsets = splitList(v)
		}
	}
	if !changed("request-timeout") {
		if d, ok := parseDurationEnv(os.Getenv("REQUEST_TIMEOUT"), "REQUEST_TIMEOUT"); ok {
			config.RequestTimeout = d
		}
	}
	if !changed("identity-cache-ttl") {
		if d, ok := parseDurationEnv(os.Getenv("IDENTITY_CACHE_TTL"), "IDENTITY_CACHE_TTL"); ok {
			config.IdentityCacheTTL = d
		}
	}
	if !changed("max-response-bytes") {
		if n, ok := parseIntEnv(os.Getenv("MAX_RESPONSE_BYTES"), "MAX_RESPONSE_BYTES"); ok {
			config.MaxResponseBytes = n
		}
	}
}

// newLogger builds the process logger. Logs always go to stderr because
// stdout carries the stdio protocol.
func newLogger(config ServeConfig) *slog.Logger {
	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.Transport == transportStdio {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// runServe wires dependencies and runs the selected transport until a
// shutdown signal arrives.
func runServe(config ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	logger := newLogger(config)
	slog.SetDefault(logger)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("Error during instrumentation shutdown", logging.Err(shutdownErr))
		}
	}()
	if config.ReadOnly {
		logger.Info("Read-only mode enabled, write tools will refuse to run")
	}
	if instrumentationProvider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics", instrumentationConfig.MetricsExporter,
			"tracing", instrumentationConfig.TracingExporter)
	}
	metrics := instrumentationProvider.Metrics()

	api := apigateway.New(
		apigateway.WithBaseURL(config.APIBaseURL),
		apigateway.WithTimeout(config.RequestTimeout),
		apigateway.WithRecorder(metrics),
		apigateway.WithLogger(logger),
		apigateway.WithUserAgent("mcp-cloudflare-one/"+rootCmd.Version),
	)

	store, err := accountstore.New(shutdownCtx, config.SessionStoreConfig,
		accountstore.WithLogger(logger),
		accountstore.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	cacheConfig := identity.DefaultCacheConfig()
	if config.IdentityCacheTTL > 0 {
		cacheConfig.TTL = config.IdentityCacheTTL
	}
	identityResolver := identity.NewResolver(api,
		identity.WithCacheConfig(cacheConfig),
		identity.WithLogger(logger),
		identity.WithMetrics(metrics),
	)

	serverConfig := server.NewDefaultConfig()
	serverConfig.Version = rootCmd.Version
	serverConfig.Toolsets = config.Toolsets
	serverConfig.APIBaseURL = config.APIBaseURL
	serverConfig.RequestTimeout = config.RequestTimeout
	serverConfig.MaxResponseBytes = config.MaxResponseBytes
	serverConfig.ReadOnly = config.ReadOnly
	serverConfig.SessionStore = config.SessionStoreConfig.Backend
	if config.DebugMode {
		serverConfig.LogLevel = "debug"
	}

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithConfig(serverConfig),
		server.WithLogger(logging.NewSlogAdapter(logger)),
		server.WithAPIClient(api),
		server.WithAccountStore(store),
		server.WithIdentityResolver(identityResolver),
		server.WithInstrumentationProvider(instrumentationProvider),
	)
	if err != nil {
		_ = identityResolver.Close()
		_ = store.Close()
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer(serverConfig.ServerName, rootCmd.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(serverConfig.Instructions),
		mcpserver.WithRecovery(),
	)

	registry := tools.NewRegistry(mcpSrv, serverContext)
	if err := catalog.Register(registry); err != nil {
		return err
	}

	switch config.Transport {
	case transportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, serverContext, config)
	default:
		return runHTTPServer(shutdownCtx, mcpSrv, serverContext, config, instrumentationProvider)
	}
}

// shutdownTimeout bounds the graceful shutdown of the HTTP servers.
var shutdownTimeout = server.DefaultShutdownTimeout

func withShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
