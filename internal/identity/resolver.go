package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

// AccountHeader names the account an account API token is bound to.
const AccountHeader = "X-Cloudflare-Account-ID"

var (
	// ErrInvalidCredential means Cloudflare rejected the token, or the token
	// is not active.
	ErrInvalidCredential = errors.New("invalid Cloudflare credential")

	// ErrMissingCredential means no bearer token was presented.
	ErrMissingCredential = errors.New("missing Cloudflare credential")
)

// Identity is a verified caller.
type Identity struct {
	Principal principal.Principal

	// User describes the caller for audit logs. For account tokens the id is
	// the token id and the email is empty.
	User *oauth.UserInfo
}

// MetricsRecorder records identity resolutions.
type MetricsRecorder interface {
	RecordIdentityResolution(ctx context.Context, kind, result string, cacheHit bool)
	SetIdentityCacheSize(ctx context.Context, size int)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) RecordIdentityResolution(context.Context, string, string, bool) {}
func (noopMetricsRecorder) SetIdentityCacheSize(context.Context, int)                      {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheConfig sets the cache configuration.
func WithCacheConfig(config CacheConfig) Option {
	return func(r *Resolver) {
		r.cacheConfig = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// withClock sets the clock function for testing.
func withClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver verifies credentials against the Cloudflare API.
type Resolver struct {
	api         *apigateway.Client
	cache       *cache
	cacheConfig CacheConfig
	logger      *slog.Logger
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewResolver returns a Resolver and starts its cache janitor. Call Close to
// stop it.
func NewResolver(api *apigateway.Client, opts ...Option) *Resolver {
	r := &Resolver{
		api:         api,
		cacheConfig: DefaultCacheConfig(),
		logger:      slog.Default(),
		metrics:     noopMetricsRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newCache(r.cacheConfig, r.logger, r.metrics, r.now)
	return r
}

// Close stops the cache janitor and drops cached identities.
func (r *Resolver) Close() error {
	r.cache.close()
	return nil
}

// CacheSize returns the number of cached identities.
func (r *Resolver) CacheSize() int {
	return r.cache.size()
}

// Resolve verifies token. A non-empty accountID treats it as an account API
// token bound to that account.
func (r *Resolver) Resolve(ctx context.Context, token *oauth2.Token, accountID string) (Identity, error) {
	if token == nil || token.AccessToken == "" {
		return Identity{}, ErrMissingCredential
	}
	accountID = strings.TrimSpace(accountID)

	kind := principal.KindUserBound
	if accountID != "" {
		kind = principal.KindTenantBound
	}

	key := cacheKey(token.AccessToken, accountID)
	if id, ok := r.cache.get(key); ok {
		r.metrics.RecordIdentityResolution(ctx, kind.String(), instrumentation.StatusSuccess, true)
		return id, nil
	}

	// The shared lookup outlives any one caller; the gateway's per-request
	// timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	ch := r.cache.group.DoChan(key, func() (any, error) {
		if id, ok := r.cache.get(key); ok {
			return id, nil
		}

		var (
			id  Identity
			err error
		)
		if accountID != "" {
			id, err = r.verifyAccountToken(shared, token, accountID)
		} else {
			id, err = r.fetchUser(shared, token)
		}
		if err != nil {
			return Identity{}, err
		}

		r.cache.set(shared, key, id)
		return id, nil
	})

	var (
		v   any
		err error
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		r.metrics.RecordIdentityResolution(ctx, kind.String(), instrumentation.StatusError, false)
		r.logger.Debug("Identity resolution failed",
			logging.PrincipalKind(kind.String()),
			logging.Err(err))
		return Identity{}, err
	}

	r.metrics.RecordIdentityResolution(ctx, kind.String(), instrumentation.StatusSuccess, false)
	return v.(Identity), nil
}

// cacheKey never contains the token itself.
func cacheKey(token, accountID string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:]) + "|" + accountID
}

var tokenVerifySchema = apigateway.MustCompileSchema("token_verify", `{
	"type": "object",
	"required": ["id", "status"],
	"properties": {
		"id": {"type": "string"},
		"status": {"type": "string"}
	}
}`)

type tokenVerifyResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (r *Resolver) verifyAccountToken(ctx context.Context, token *oauth2.Token, accountID string) (Identity, error) {
	env, err := r.api.Call(ctx, apigateway.CallSpec{
		Method:     http.MethodGet,
		Endpoint:   "/tokens/verify",
		AccountID:  accountID,
		Credential: token,
		Schema:     tokenVerifySchema,
	})
	if err != nil {
		return Identity{}, classify(err)
	}

	result, err := apigateway.Decode[tokenVerifyResult](env)
	if err != nil {
		return Identity{}, err
	}
	if result.Status != "active" {
		return Identity{}, fmt.Errorf("%w: token status %q", ErrInvalidCredential, result.Status)
	}

	return Identity{
		Principal: principal.TenantBound(accountID),
		User:      &oauth.UserInfo{ID: "token:" + result.ID},
	}, nil
}

var userSchema = apigateway.MustCompileSchema("user", `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"email": {"type": "string"},
		"first_name": {"type": ["string", "null"]},
		"last_name": {"type": ["string", "null"]}
	}
}`)

type userResult struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r *Resolver) fetchUser(ctx context.Context, token *oauth2.Token) (Identity, error) {
	env, err := r.api.CallGlobal(ctx, apigateway.CallSpec{
		Method:     http.MethodGet,
		Endpoint:   "/user",
		Credential: token,
		Schema:     userSchema,
	})
	if err != nil {
		return Identity{}, classify(err)
	}

	user, err := apigateway.Decode[userResult](env)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		Principal: principal.UserBound(user.ID),
		User: &oauth.UserInfo{
			ID:    user.ID,
			Email: user.Email,
			Name:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		},
	}, nil
}

// classify maps rejected credentials to ErrInvalidCredential and keeps
// everything else as is.
func classify(err error) error {
	if apigateway.IsUnauthorized(err) {
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	return err
}
