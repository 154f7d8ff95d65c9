package accountstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
)

// Operation results reported to MetricsRecorder.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// MetricsRecorder receives one call per store operation. It decouples the
// store from the concrete instrumentation package.
type MetricsRecorder interface {
	RecordStoreOperation(ctx context.Context, backend, operation, result string, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) RecordStoreOperation(context.Context, string, string, string, time.Duration) {
}

// instrumented decorates a Store with metrics and debug logging.
type instrumented struct {
	next    Store
	backend string
	metrics MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// Instrument wraps store so that every operation is recorded. A nil
// recorder or logger falls back to a no-op recorder and slog.Default.
func Instrument(store Store, backend string, metrics MetricsRecorder, logger *slog.Logger) Store {
	if metrics == nil {
		metrics = noopMetricsRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &instrumented{
		next:    store,
		backend: backend,
		metrics: metrics,
		logger:  logger.With("backend", backend),
		now:     time.Now,
	}
}

func (s *instrumented) Get(ctx context.Context, userID string) (string, bool, error) {
	start := s.now()
	accountID, ok, err := s.next.Get(ctx, userID)

	result := ResultMiss
	switch {
	case err != nil:
		result = ResultError
		s.logFailure("get", userID, err)
	case ok:
		result = ResultHit
	}
	s.metrics.RecordStoreOperation(ctx, s.backend, "get", result, s.now().Sub(start))

	return accountID, ok, err
}

func (s *instrumented) Set(ctx context.Context, userID, accountID string) error {
	start := s.now()
	err := s.next.Set(ctx, userID, accountID)

	result := ResultOK
	if err != nil {
		result = ResultError
		s.logFailure("set", userID, err)
	} else {
		s.logger.Debug("Active account updated",
			logging.UserHash(userID),
			logging.AccountID(accountID))
	}
	s.metrics.RecordStoreOperation(ctx, s.backend, "set", result, s.now().Sub(start))

	return err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) logFailure(op, userID string, err error) {
	if !errors.Is(err, ErrUnavailable) {
		return
	}
	s.logger.Warn("Active account store operation failed",
		logging.Operation(op),
		logging.UserHash(userID),
		logging.Err(err))
}
