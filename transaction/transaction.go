package transaction

import (
	"time"

	"github.com/jrsteele09/go-venmo-sdk/session"
)

// Status is the provider's settlement state for a transaction.
type Status string

const (
	StatusSettled   Status = "settled"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Transaction is a transaction created by the provider, from either the API
// response or a signed app switch callback.
type Transaction struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Type        Type          `json:"action"`
	Amount      Amount        `json:"amount"`
	Note        string        `json:"note"`
	Audience    Audience      `json:"audience,omitempty"`
	Target      *Target       `json:"target,omitempty"`
	Actor       *session.User `json:"actor,omitempty"`
	DateCreated time.Time     `json:"date_created"`
}

// Target is the counter-party of a transaction.
type Target struct {
	Type  RecipientKind `json:"type"`
	Email string        `json:"email,omitempty"`
	Phone string        `json:"phone,omitempty"`
	User  *session.User `json:"user,omitempty"`
}
