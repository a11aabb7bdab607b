package api

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure so callers can branch on it
// (redirect to login vs inline message vs retry button).
type Kind int

const (
	// KindNetwork covers unreachable hosts, timeouts and 5xx responses.
	// These are the only retryable failures.
	KindNetwork Kind = iota

	// KindValidation covers 400 responses and locally detected bad input
	// (missing fields, password mismatch).
	KindValidation

	// KindAuthorization covers 401/403: the action needs a session or a
	// role the caller does not have.
	KindAuthorization

	// KindNotFound covers 404.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "network"
	}
}

// Error is the single error type crossing the API boundary. The backend's
// assorted failure shapes are collapsed into it exactly once, in do().
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when the request never completed
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err. Errors that did not originate at the
// API boundary report KindNetwork, the conservative default.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// IsRetryable reports whether re-issuing the same request unchanged could
// succeed. Only network-class failures qualify.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == KindNetwork
}

// kindForStatus maps an HTTP status code to an error Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == 400:
		return KindValidation
	case status == 401 || status == 403:
		return KindAuthorization
	case status == 404:
		return KindNotFound
	default:
		return KindNetwork
	}
}
