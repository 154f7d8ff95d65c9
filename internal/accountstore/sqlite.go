package accountstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS active_accounts (
	user_id    TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLite stores selections in a local database file. SQLite allows a single
// writer, and the pool is limited to one connection, so operations apply in
// arrival order.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, unavailable(BackendSQLite, "connect", fmt.Errorf("sqlite pragma %q: %w", p, err))
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, unavailable(BackendSQLite, "migrate", err)
	}

	return &SQLite{db: db}, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, userID string) (string, bool, error) {
	if err := validateUserID(userID); err != nil {
		return "", false, err
	}

	var accountID string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id FROM active_accounts WHERE user_id = ?`, userID,
	).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendSQLite, "get", err)
	}
	return accountID, true, nil
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, userID, accountID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if accountID == "" {
		return ErrEmptyAccountID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO active_accounts (user_id, account_id, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE
		 SET account_id = excluded.account_id, updated_at = excluded.updated_at`,
		userID, accountID)
	if err != nil {
		return unavailable(BackendSQLite, "set", err)
	}
	return nil
}

// Ping implements Store.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(BackendSQLite, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
