// Package transaction models pay and charge requests and the transactions
// the provider creates from them.
package transaction

import (
	"fmt"
	"regexp"
	"strings"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
)

// Type is the direction of money movement.
type Type string

const (
	TypePay    Type = "pay"
	TypeCharge Type = "charge"
)

// Audience is the visibility of a transaction created through the API.
// App switch sends let the user pick the audience in the native app.
type Audience string

const (
	AudiencePublic  Audience = "public"
	AudienceFriends Audience = "friends"
	AudiencePrivate Audience = "private"
)

// Method selects how a transaction is dispatched.
type Method int

const (
	// MethodAppSwitch sends by switching to the native app.
	MethodAppSwitch Method = iota
	// MethodAPI sends through the REST API. Without a valid session the SDK
	// falls back to app switch unless strict mode is set.
	MethodAPI
)

func (m Method) String() string {
	switch m {
	case MethodAppSwitch:
		return "app_switch"
	case MethodAPI:
		return "api"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// RecipientKind is how the provider identifies the recipient handle.
type RecipientKind string

const (
	RecipientEmail  RecipientKind = "email"
	RecipientPhone  RecipientKind = "phone"
	RecipientUserID RecipientKind = "user_id"
)

var (
	phoneChars     = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)
	phoneSeparator = regexp.MustCompile(`[ ()\-.]`)
)

// A national number written as bare digits, e.g. 5551234567.
const nationalPhoneDigits = 10

// Request is a pay or charge to send. Amounts are in minor units (cents).
type Request struct {
	RecipientHandle  string
	Type             Type
	AmountMinorUnits uint64
	Note             string
	Audience         Audience

	// Recipient states how RecipientHandle identifies the recipient. Empty
	// means it is inferred from the handle.
	Recipient RecipientKind
}

// Validate checks the request before dispatch.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.RecipientHandle) == "" {
		return fmt.Errorf("%w: recipient handle is required", sdkerrors.ErrInvalidTransaction)
	}
	switch r.Type {
	case TypePay, TypeCharge:
	default:
		return fmt.Errorf("%w: unknown type %q", sdkerrors.ErrInvalidTransaction, r.Type)
	}
	if r.AmountMinorUnits == 0 {
		return fmt.Errorf("%w: amount must be positive", sdkerrors.ErrInvalidTransaction)
	}
	if strings.TrimSpace(r.Note) == "" {
		return fmt.Errorf("%w: note is required", sdkerrors.ErrInvalidTransaction)
	}
	switch r.Audience {
	case "", AudiencePublic, AudienceFriends, AudiencePrivate:
	default:
		return fmt.Errorf("%w: unknown audience %q", sdkerrors.ErrInvalidTransaction, r.Audience)
	}
	switch r.Recipient {
	case "", RecipientEmail, RecipientPhone, RecipientUserID:
	default:
		return fmt.Errorf("%w: unknown recipient kind %q", sdkerrors.ErrInvalidTransaction, r.Recipient)
	}
	return nil
}

// AudienceOrDefault returns the audience, defaulting to private.
func (r *Request) AudienceOrDefault() Audience {
	if r.Audience == "" {
		return AudiencePrivate
	}
	return r.Audience
}

// RecipientKind returns Recipient when set and otherwise classifies the
// handle. A phone number has 7 to 15 digits (E.164) and is written either
// with a leading "+", with separators, or as a bare 10 digit national
// number. Any other run of digits is a user id.
func (r *Request) RecipientKind() RecipientKind {
	if r.Recipient != "" {
		return r.Recipient
	}
	handle := strings.TrimSpace(r.RecipientHandle)
	switch {
	case strings.Contains(handle, "@"):
		return RecipientEmail
	case isPhoneNumber(handle):
		return RecipientPhone
	}
	return RecipientUserID
}

func isPhoneNumber(handle string) bool {
	if !phoneChars.MatchString(handle) {
		return false
	}
	digits := 0
	for _, c := range handle {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return false
	}
	if strings.HasPrefix(handle, "+") || phoneSeparator.MatchString(handle) {
		return true
	}
	return digits == nationalPhoneDigits
}

// FormatAmount renders minor units as a decimal string, e.g. 1234 -> "12.34".
func FormatAmount(minor uint64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// SignedAmount is the API amount: positive for pay, negative for charge.
func (r *Request) SignedAmount() string {
	if r.Type == TypeCharge {
		return "-" + FormatAmount(r.AmountMinorUnits)
	}
	return FormatAmount(r.AmountMinorUnits)
}
