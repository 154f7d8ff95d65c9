package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
)

// DefaultMetricsAddr is the default listen address of the metrics server.
const DefaultMetricsAddr = ":9090"

// MetricsServerConfig configures the dedicated metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address (default ":9090").
	Addr string

	// Enabled is informational; callers decide whether to start the server.
	Enabled bool

	// InstrumentationProvider must be set. Its Prometheus exporter registers
	// with the default registry served here.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics on its own port, away from MCP traffic.
type MetricsServer struct {
	addr       string
	httpServer *http.Server
}

// NewMetricsServer builds a metrics server. It does not start listening.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	endpoint := config.InstrumentationProvider.Config().PrometheusEndpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}

	mux := http.NewServeMux()
	// A failing collector should not hide the remaining series.
	mux.Handle(endpoint, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
		},
	}, nil
}

// Addr returns the listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}

// Handler returns the metrics and health routes.
func (s *MetricsServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving metrics until Shutdown. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *MetricsServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server. Calling it before Start is allowed.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
