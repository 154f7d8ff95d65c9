package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/giantswarm/mcp-cloudflare-one/internal/accountstore"
	"github.com/giantswarm/mcp-cloudflare-one/internal/principal"
)

var (
	// ErrNotSelected means a user-bound principal has not selected an
	// active account yet.
	ErrNotSelected = errors.New("no active account selected")

	// ErrStoreUnavailable matches every StoreUnavailableError.
	ErrStoreUnavailable = errors.New("active account store unavailable")
)

// StoreUnavailableError reports that the active account could not be read.
// It is distinct from ErrNotSelected: the user may well have a selection.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("read active account: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStoreUnavailable) true.
func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Resolver maps principals to account ids.
type Resolver struct {
	store accountstore.Store
}

// NewResolver returns a Resolver reading selections from store.
func NewResolver(store accountstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the account id p operates on.
func (r *Resolver) Resolve(ctx context.Context, p principal.Principal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if accountID, ok := p.AccountID(); ok {
		return accountID, nil
	}

	userID, _ := p.UserID()
	accountID, ok, err := r.store.Get(ctx, userID)
	if err != nil {
		return "", &StoreUnavailableError{Err: err}
	}
	if !ok {
		return "", ErrNotSelected
	}
	return accountID, nil
}
