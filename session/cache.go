package session

import sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"

// ErrNotFound is returned by Load when no session is cached for the app.
var ErrNotFound = sdkerrors.ErrCacheMiss

// Cache persists sessions keyed by app id. Writes replace the whole session
// and must be atomic with respect to reads.
type Cache interface {
	// Load returns the cached session or ErrNotFound
	Load(appID string) (*Session, error)

	// Save overwrites the cached session
	Save(appID string, s *Session) error

	// Delete removes the cached session; deleting a missing entry is not an error
	Delete(appID string) error
}
