package api

import (
	"fmt"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
)

// TransportError is a failed API round trip: a network failure (Cause set,
// StatusCode zero) or a non-2xx response (StatusCode set, Code and Message
// from the provider's error body when present).
type TransportError struct {
	StatusCode int
	Code       int
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	msg := "transport error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s, code %d", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is matches ErrTransport so callers need not know the concrete type.
func (e *TransportError) Is(target error) bool {
	return target == sdkerrors.ErrTransport
}
