package accountstore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable matches every backend failure.
	ErrUnavailable = errors.New("active account store unavailable")

	// ErrEmptyUserID is returned when an operation is called without a user id.
	ErrEmptyUserID = errors.New("user id must not be empty")

	// ErrEmptyAccountID is returned when Set is called without an account id.
	ErrEmptyAccountID = errors.New("account id must not be empty")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("active account store closed")
)

// UnavailableError reports that a backend could not serve an operation.
type UnavailableError struct {
	Backend string
	Op      string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s store %s: %v", e.Backend, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) true for every UnavailableError.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func unavailable(backend, op string, err error) error {
	return &UnavailableError{Backend: backend, Op: op, Err: err}
}
