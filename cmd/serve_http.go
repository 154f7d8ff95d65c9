package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/server"
)

// runHTTPServer runs the SSE or streamable HTTP transport, plus the metrics
// server when Prometheus metrics are enabled, until ctx is cancelled.
func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config ServeConfig, provider *instrumentation.Provider) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPConfig{
		Transport:        config.Transport,
		Addr:             config.HTTPAddr,
		MCPEndpoint:      config.HTTPEndpoint,
		SSEEndpoint:      config.SSEEndpoint,
		MessageEndpoint:  config.MessageEndpoint,
		DisableStreaming: config.DisableStreaming,
		AllowedOrigins:   config.AllowedOrigins,
		EnableHSTS:       config.EnableHSTS,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	var metricsServer *server.MetricsServer
	if provider.Enabled() && provider.Config().MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			slog.Info("Metrics server starting", "addr", metricsServer.Addr())
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server stopped with error", logging.Err(err))
			}
		}()
	}

	// Start server in goroutine
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := withShutdownTimeout()
		defer cancel()

		// Shutdown metrics server first
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("Error shutting down metrics server", logging.Err(err))
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if metricsServer != nil {
			shutdownCtx, cancel := withShutdownTimeout()
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		slog.Info("HTTP server stopped normally")
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
