package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
	"github.com/giantswarm/mcp-cloudflare-one/internal/logging"
	"github.com/giantswarm/mcp-cloudflare-one/internal/mcp/oauth"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

var (
	// ErrNoPrincipal means the call reached a tenant-scoped tool without an
	// authenticated principal or credential.
	ErrNoPrincipal = errors.New("no authenticated principal for this call")

	// ErrNoActiveAccount is returned to user-bound principals that have not
	// selected an account.
	ErrNoActiveAccount = errors.New("no active account selected")

	// ErrSessionStateUnavailable is returned when the active account could
	// not be read. The call is refused rather than guessed.
	ErrSessionStateUnavailable = errors.New("session state temporarily unavailable")
)

// NoActiveAccountMessage tells the agent how to recover from ErrNoActiveAccount.
const NoActiveAccountMessage = "No active account selected. Use accounts_list and set_active_account first."

// Scope is what a guarded handler is allowed to act on.
type Scope struct {
	AccountID  string
	Credential *oauth2.Token
	Principal  principal.Principal
}

// Handler is a tenant-scoped tool handler.
type Handler func(ctx context.Context, request mcp.CallToolRequest, scope Scope) (*mcp.CallToolResult, error)

// DecisionRecorder records guard outcomes.
type DecisionRecorder interface {
	RecordGuardDecision(ctx context.Context, outcome string)
}

type noopDecisionRecorder struct{}

func (noopDecisionRecorder) RecordGuardDecision(context.Context, string) {}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithDecisionRecorder sets the recorder for guard outcomes.
func WithDecisionRecorder(r DecisionRecorder) GuardOption {
	return func(g *Guard) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithGuardLogger sets the guard logger.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Guard gates tenant-scoped handlers on a resolved account.
type Guard struct {
	resolver *Resolver
	recorder DecisionRecorder
	logger   *slog.Logger
}

// NewGuard returns a Guard using resolver.
func NewGuard(resolver *Resolver, opts ...GuardOption) *Guard {
	g := &Guard{
		resolver: resolver,
		recorder: noopDecisionRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check resolves the scope for the call in ctx. The returned error is one of
// ErrNoPrincipal, ErrNoActiveAccount or ErrSessionStateUnavailable, wrapped
// with detail where there is any.
func (g *Guard) Check(ctx context.Context) (Scope, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		g.recorder.RecordGuardDecision(ctx, instrumentation.GuardNoPrincipal)
		return Scope{}, ErrNoPrincipal
	}
	cred, ok := oauth.CredentialFromContext(ctx)
	if !ok {
		g.recorder.RecordGuardDecision(ctx, instrumentation.GuardNoPrincipal)
		return Scope{}, fmt.Errorf("%w: missing credential", ErrNoPrincipal)
	}

	accountID, err := g.resolver.Resolve(ctx, p)
	switch {
	case errors.Is(err, ErrNotSelected):
		g.recorder.RecordGuardDecision(ctx, instrumentation.GuardNoActiveAccount)
		return Scope{}, ErrNoActiveAccount
	case errors.Is(err, ErrStoreUnavailable):
		g.recorder.RecordGuardDecision(ctx, instrumentation.GuardStoreUnavailable)
		g.logger.Warn("Refusing tenant-scoped call, active account unknown",
			logging.PrincipalKind(p.Kind().String()),
			logging.Err(err))
		return Scope{}, fmt.Errorf("%w: %w", ErrSessionStateUnavailable, err)
	case errors.Is(err, principal.ErrInvalid):
		g.recorder.RecordGuardDecision(ctx, instrumentation.GuardNoPrincipal)
		return Scope{}, fmt.Errorf("%w: %w", ErrNoPrincipal, err)
	case err != nil:
		return Scope{}, err
	}

	g.recorder.RecordGuardDecision(ctx, instrumentation.GuardAllowed)
	return Scope{AccountID: accountID, Credential: cred, Principal: p}, nil
}

// Wrap returns an mcp-go handler that runs h only when Check succeeds. Guard
// failures become tool errors; h's own result and error pass through
// unchanged.
func (g *Guard) Wrap(h Handler) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scope, err := g.Check(ctx)
		if err != nil {
			return mcp.NewToolResultError(ErrorMessage(err)), nil
		}
		return h(ctx, request, scope)
	}
}

// ErrorMessage renders a guard error for the agent.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoActiveAccount):
		return NoActiveAccountMessage
	case errors.Is(err, ErrSessionStateUnavailable):
		return "The active account could not be read because session state is temporarily unavailable. Please retry shortly."
	case errors.Is(err, ErrNoPrincipal):
		return "Authentication required: " + ErrNoPrincipal.Error()
	default:
		return err.Error()
	}
}
