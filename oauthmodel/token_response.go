package oauthmodel

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/internal/utils"
)

// MaxExpiresIn is the largest lifetime in seconds that fits a time.Duration.
const MaxExpiresIn = math.MaxInt64 / int64(time.Second)

// TokenResponse is the token payload carried on an app switch callback URL.
type TokenResponse struct {
	// AccessToken is the bearer token for API calls.
	// Usage: "Authorization: Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken exchanges for a new access token once this one expires.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType is "bearer" when present.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the token lifetime in seconds relative to receipt.
	// Example: 5184000 (60 days)
	ExpiresIn *int64 `json:"expires_in,omitempty"`

	// ExpiresAt is an absolute expiry, either unix seconds or RFC 3339.
	// Only consulted when ExpiresIn is absent.
	ExpiresAt *string `json:"expires_at,omitempty"`

	// Permissions granted, comma separated. May be narrower than requested.
	Permissions *string `json:"permissions,omitempty"`
}

// CallbackError is the error half of a callback URL.
type CallbackError struct {
	Code        string
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// CallbackErrorFromQuery returns the provider error carried by q, or nil.
func CallbackErrorFromQuery(q url.Values) *CallbackError {
	code := q.Get(ParamError)
	if code == "" {
		return nil
	}
	return &CallbackError{Code: code, Description: q.Get(ParamErrorDescription)}
}

// TokenResponseFromQuery reads the token fields of a success callback.
func TokenResponseFromQuery(q url.Values) (*TokenResponse, error) {
	tr := &TokenResponse{TokenType: q.Get(ParamTokenType)}
	if v := q.Get(ParamAccessToken); v != "" {
		tr.AccessToken = utils.Ptr(v)
	}
	if v := q.Get(ParamRefreshToken); v != "" {
		tr.RefreshToken = utils.Ptr(v)
	}
	if v := q.Get(ParamExpiresIn); v != "" {
		seconds, err := strconv.ParseInt(v, 10, 64)
		if err != nil || seconds < 0 || seconds > MaxExpiresIn {
			return nil, fmt.Errorf("%w: expires_in=%q", ErrInvalidExpiry, v)
		}
		tr.ExpiresIn = utils.Ptr(seconds)
	}
	if v := q.Get(ParamExpiresAt); v != "" {
		tr.ExpiresAt = utils.Ptr(v)
	}
	if _, ok := q[ParamPermissions]; ok {
		tr.Permissions = utils.Ptr(q.Get(ParamPermissions))
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Validate checks the fields every success callback must carry.
func (tr *TokenResponse) Validate() error {
	if strings.TrimSpace(utils.Value(tr.AccessToken)) == "" {
		return ErrMissingAccessToken
	}
	if tr.ExpiresIn == nil && tr.ExpiresAt == nil {
		return ErrMissingExpiry
	}
	return nil
}

// Expiry resolves the absolute expiry time relative to now.
func (tr *TokenResponse) Expiry(now time.Time) (time.Time, error) {
	if tr.ExpiresIn != nil {
		if *tr.ExpiresIn < 0 || *tr.ExpiresIn > MaxExpiresIn {
			return time.Time{}, fmt.Errorf("%w: expires_in=%d", ErrInvalidExpiry, *tr.ExpiresIn)
		}
		return now.Add(time.Duration(*tr.ExpiresIn) * time.Second), nil
	}
	raw := utils.Value(tr.ExpiresAt)
	if raw == "" {
		return time.Time{}, ErrMissingExpiry
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expires_at=%q", ErrInvalidExpiry, raw)
	}
	return t, nil
}

// GrantedPermissions returns the granted set, falling back to requested when
// the callback omits the field.
func (tr *TokenResponse) GrantedPermissions(requested Permissions) Permissions {
	if tr.Permissions == nil {
		return requested
	}
	return ParsePermissions(*tr.Permissions)
}
