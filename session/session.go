// Package session holds the user's authorization state and the caches that
// persist it between process launches.
package session

import (
	"time"

	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
)

// Session is the authorization state for one app. It is open iff AccessToken
// is set; the zero value is a closed session.
type Session struct {
	AccessToken  string                 `json:"access_token,omitempty"`
	RefreshToken string                 `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time              `json:"expires_at,omitempty"`
	Permissions  oauthmodel.Permissions `json:"permissions,omitempty"`
	User         *User                  `json:"user,omitempty"`
}

// User is the provider's profile of the authorizing user.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	FirstName         string    `json:"first_name,omitempty"`
	LastName          string    `json:"last_name,omitempty"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	About             string    `json:"about,omitempty"`
	DateJoined        time.Time `json:"date_joined,omitempty"`
}

func (s *Session) IsOpen() bool {
	return s != nil && s.AccessToken != ""
}

// IsValid reports an open session whose token has not expired at now.
func (s *Session) IsValid(now time.Time) bool {
	return s.IsOpen() && !now.After(s.ExpiresAt)
}

// ShouldRefresh reports an open session whose token has expired at now.
// Tokens can only be refreshed after they expire.
func (s *Session) ShouldRefresh(now time.Time) bool {
	return s.IsOpen() && now.After(s.ExpiresAt)
}

func (s *Session) HasPermission(p oauthmodel.Permission) bool {
	return s.IsOpen() && s.Permissions.Contains(p)
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Permissions != nil {
		c.Permissions = append(oauthmodel.Permissions(nil), s.Permissions...)
	}
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}
