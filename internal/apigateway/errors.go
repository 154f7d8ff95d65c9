package apigateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransportFailure covers network errors, deadlines and non-2xx
	// responses without a v4 error body.
	KindTransportFailure Kind = iota + 1

	// KindUpstream is a v4 error envelope returned by the API.
	KindUpstream

	// KindResponseShapeMismatch is a successful status whose body fails
	// validation.
	KindResponseShapeMismatch
)

func (k Kind) String() string {
	switch k {
	case KindTransportFailure:
		return "transport_failure"
	case KindUpstream:
		return "upstream_error"
	case KindResponseShapeMismatch:
		return "response_shape_mismatch"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingAccountID is returned when an account-scoped call has no account id.
	ErrMissingAccountID = errors.New("account id is required for account-scoped calls")

	// ErrMissingCredential is returned when a call has no bearer credential.
	ErrMissingCredential = errors.New("credential is required")
)

// Message is one entry of a v4 errors or messages array.
type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error is returned by Client.Call for every failed request.
type Error struct {
	Kind     Kind
	Method   string
	Endpoint string
	Status   int
	Messages []Message
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cloudflare %s %s: ", e.Method, e.Endpoint)

	switch e.Kind {
	case KindUpstream:
		fmt.Fprintf(&b, "API error (HTTP %d)", e.Status)
		for i, m := range e.Messages {
			if i == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "[%d] %s", m.Code, m.Message)
		}
	case KindResponseShapeMismatch:
		b.WriteString("unexpected response shape")
	default:
		if e.Status != 0 {
			fmt.Fprintf(&b, "HTTP %d %s", e.Status, http.StatusText(e.Status))
		} else {
			b.WriteString("request failed")
		}
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected the credential.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// UnmarshalJSON accepts both {"code":..,"message":..} and plain strings,
// which some endpoints return in the messages array.
func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Message{Message: s}
		return nil
	}
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Message(p)
	return nil
}
