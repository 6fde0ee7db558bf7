package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every SDK package. The sdk package re-exports these.
var (
	// Configuration errors
	ErrInvalidCredentials = errors.New("invalid app credentials")

	// App switch errors
	ErrAppNotInstalled   = errors.New("venmo app not installed")
	ErrRequestInProgress = errors.New("request already in progress")
	ErrCallbackMismatch  = errors.New("callback does not match a pending request")
	ErrMalformedCallback = errors.New("malformed callback")

	// The user declined an authorization or a transaction in the other app
	ErrRequestDenied = errors.New("request denied")

	// Session errors
	ErrNoSession      = errors.New("no open session")
	ErrTokenExpired   = errors.New("access token expired")
	ErrNoRefreshToken = errors.New("session has no refresh token")

	// Transaction errors
	ErrInvalidTransaction = errors.New("invalid transaction request")

	// Cache errors
	ErrCacheMiss = errors.New("session not cached")

	// Network errors
	ErrTransport = errors.New("transport error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
