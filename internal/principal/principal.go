package principal

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies which variant a Principal holds.
type Kind int

const (
	// KindUnknown is the zero value and never denotes a valid principal.
	KindUnknown Kind = iota
	// KindTenantBound is an account token bound to exactly one account.
	KindTenantBound
	// KindUserBound is a user token that must select an active account.
	KindUserBound
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindTenantBound:
		return "tenant_bound"
	case KindUserBound:
		return "user_bound"
	default:
		return "unknown"
	}
}

// ErrInvalid is returned when a principal has no usable variant.
var ErrInvalid = errors.New("invalid principal")

// Principal is the decoded result of authentication.
type Principal struct {
	kind      Kind
	accountID string
	userID    string
}

// TenantBound returns a principal scoped to a single account.
func TenantBound(accountID string) Principal {
	return Principal{kind: KindTenantBound, accountID: accountID}
}

// UserBound returns a principal for a human identity.
func UserBound(userID string) Principal {
	return Principal{kind: KindUserBound, userID: userID}
}

// Kind returns the variant tag.
func (p Principal) Kind() Kind { return p.kind }

// AccountID returns the bound account id for tenant-bound principals.
func (p Principal) AccountID() (string, bool) {
	return p.accountID, p.kind == KindTenantBound
}

// UserID returns the user id for user-bound principals.
func (p Principal) UserID() (string, bool) {
	return p.userID, p.kind == KindUserBound
}

// Validate reports whether the principal carries the identifier its kind requires.
func (p Principal) Validate() error {
	switch p.kind {
	case KindTenantBound:
		if p.accountID == "" {
			return fmt.Errorf("%w: tenant-bound principal without account id", ErrInvalid)
		}
	case KindUserBound:
		if p.userID == "" {
			return fmt.Errorf("%w: user-bound principal without user id", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown kind", ErrInvalid)
	}
	return nil
}

// String renders the principal without exposing the user id.
func (p Principal) String() string {
	switch p.kind {
	case KindTenantBound:
		return "tenant_bound(" + p.accountID + ")"
	case KindUserBound:
		return "user_bound"
	default:
		return "unknown"
	}
}

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal attached to ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	if !ok || p.kind == KindUnknown {
		return Principal{}, false
	}
	return p, true
}
