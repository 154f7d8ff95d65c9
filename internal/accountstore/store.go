package accountstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend names accepted by [Config.Backend].
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Store is the per-user active account store.
type Store interface {
	// Get returns the active account id for userID. ok is false when the
	// user has never selected an account.
	Get(ctx context.Context, userID string) (accountID string, ok bool, err error)

	// Set overwrites the active account id for userID. Last writer wins.
	Set(ctx context.Context, userID, accountID string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of memory, redis, postgres or sqlite. Empty means memory.
	Backend string

	// RedisURL is a redis:// or rediss:// URL.
	RedisURL string

	// RedisKeyPrefix namespaces keys in a shared Redis database.
	RedisKeyPrefix string

	// PostgresDSN is a libpq-style DSN or postgres:// URL.
	PostgresDSN string

	// SQLitePath is the database file path.
	SQLitePath string

	// ConnectTimeout bounds backend start-up, including the initial ping and
	// schema creation.
	ConnectTimeout time.Duration
}

// DefaultConfig returns a memory-backed configuration.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendMemory,
		RedisKeyPrefix: DefaultRedisKeyPrefix,
		SQLitePath:     "active-accounts.db",
		ConnectTimeout: 10 * time.Second,
	}
}

// Validate checks that the fields required by the selected backend are set.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "", BackendMemory:
		return nil
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("redis session store requires a redis URL")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres session store requires a DSN")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite session store requires a database path")
		}
	default:
		return fmt.Errorf("unsupported session store %q (must be one of: %s, %s, %s, %s)",
			c.Backend, BackendMemory, BackendRedis, BackendPostgres, BackendSQLite)
	}
	return nil
}

// Option configures New.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics MetricsRecorder
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder used by the store.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New opens the configured backend and wraps it with logging and metrics.
func New(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	o := options{
		logger:  slog.Default(),
		metrics: noopMetricsRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendMemory
	}

	var (
		store Store
		err   error
	)
	switch backend {
	case BackendMemory:
		store = NewMemory()
	case BackendRedis:
		store, err = OpenRedis(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
	case BackendPostgres:
		store, err = OpenPostgres(ctx, cfg.PostgresDSN)
	case BackendSQLite:
		store, err = OpenSQLite(ctx, cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("Active account store initialized", "backend", backend)

	return Instrument(store, backend, o.metrics, o.logger), nil
}

func validateUserID(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	return nil
}
