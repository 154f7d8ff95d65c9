package accountstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS active_accounts (
	user_id    TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores one row per user in the active_accounts table. Each
// operation touches a single row, so row-level locking serializes writers
// for the same user while different users proceed independently.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool, pings it and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, unavailable(BackendPostgres, "connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(BackendPostgres, "ping", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, unavailable(BackendPostgres, "migrate", err)
	}

	return &Postgres{pool: pool}, nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, userID string) (string, bool, error) {
	if err := validateUserID(userID); err != nil {
		return "", false, err
	}

	var accountID string
	err := p.pool.QueryRow(ctx,
		`SELECT account_id FROM active_accounts WHERE user_id = $1`, userID,
	).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendPostgres, "get", err)
	}
	return accountID, true, nil
}

// Set implements Store.
func (p *Postgres) Set(ctx context.Context, userID, accountID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if accountID == "" {
		return ErrEmptyAccountID
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO active_accounts (user_id, account_id, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET account_id = EXCLUDED.account_id, updated_at = EXCLUDED.updated_at`,
		userID, accountID)
	if err != nil {
		return unavailable(BackendPostgres, "set", err)
	}
	return nil
}

// Ping implements Store.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return unavailable(BackendPostgres, "ping", err)
	}
	return nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
