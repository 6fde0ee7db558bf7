// Package authflow tracks requests that have been handed to another app and
// are waiting for the callback URL that completes them.
package authflow

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
)

// FlowKind selects how an OAuth request reaches the user. The SDK picks it
// with a capability probe: app switch when the native app can be opened,
// the browser otherwise.
type FlowKind int

const (
	AppSwitchFlow FlowKind = iota
	WebFlow
)

func (k FlowKind) String() string {
	switch k {
	case AppSwitchFlow:
		return "app_switch"
	case WebFlow:
		return "web"
	}
	return fmt.Sprintf("flow(%d)", int(k))
}

// Pending is an outstanding OAuth request.
type Pending struct {
	ID          string
	Kind        FlowKind
	State       string
	Permissions oauthmodel.Permissions
	RedirectURI string
	CreatedAt   time.Time
}

// NewPending creates a pending OAuth request with a fresh id and state.
func NewPending(kind FlowKind, perms oauthmodel.Permissions, redirectURI string, now time.Time) (*Pending, error) {
	state, err := generateState(24)
	if err != nil {
		return nil, err
	}
	return &Pending{
		ID:          uuid.New().String(),
		Kind:        kind,
		State:       state,
		Permissions: perms,
		RedirectURI: redirectURI,
		CreatedAt:   now,
	}, nil
}

// MatchesState reports whether a callback's state belongs to p. App switch
// callbacks may omit state; browser callbacks must echo it.
func (p *Pending) MatchesState(state string) bool {
	if state == "" {
		return p.Kind == AppSwitchFlow
	}
	return state == p.State
}

// PendingTransaction is an app switch send waiting for its callback.
type PendingTransaction struct {
	RequestID string
	Request   transaction.Request
	CreatedAt time.Time
}

func NewPendingTransaction(req transaction.Request, now time.Time) *PendingTransaction {
	return &PendingTransaction{
		RequestID: uuid.New().String(),
		Request:   req,
		CreatedAt: now,
	}
}

// generateState creates a random base64url string
func generateState(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
