package accountstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces active account keys.
const DefaultRedisKeyPrefix = "mcp-cloudflare-one:active-account:"

// Redis stores one string key per user. GET and SET on a single key are
// atomic in Redis, which gives per-user serialization without client locks.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the Redis server at url and pings it.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(BackendRedis, "connect", err)
	}

	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(userID string) string {
	return r.prefix + userID
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, userID string) (string, bool, error) {
	if err := validateUserID(userID); err != nil {
		return "", false, err
	}

	accountID, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendRedis, "get", err)
	}
	return accountID, accountID != "", nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, userID, accountID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if accountID == "" {
		return ErrEmptyAccountID
	}

	// Zero expiration: selections persist until overwritten.
	if err := r.client.Set(ctx, r.key(userID), accountID, 0).Err(); err != nil {
		return unavailable(BackendRedis, "set", err)
	}
	return nil
}

// Ping implements Store.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable(BackendRedis, "ping", err)
	}
	return nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}
