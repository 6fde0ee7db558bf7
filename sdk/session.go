package sdk

import (
	"context"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/pkg/errors"
)

// Session returns a copy of the current session, or nil when none is open.
func (v *Venmo) Session() *session.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.session.IsOpen() {
		return nil
	}
	return v.session.Clone()
}

// IsSessionValid reports an open session with a non-expired token.
func (v *Venmo) IsSessionValid() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.IsValid(v.nowTime())
}

// ShouldRefreshToken reports an open session whose token has expired. Hosts
// should check it whenever the application becomes active.
func (v *Venmo) ShouldRefreshToken() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.ShouldRefresh(v.nowTime())
}

// RefreshToken exchanges the session's refresh token for a new access token
// and returns it. On failure the session is left unchanged. A session opened
// without a refresh token fails with ErrNoRefreshToken and must be
// reauthorized with RequestPermissions.
func (v *Venmo) RefreshToken(ctx context.Context) (string, error) {
	v.mu.Lock()
	creds := v.creds
	current := v.session.Clone()
	v.mu.Unlock()

	if creds == nil || !current.IsOpen() {
		return "", errors.Wrap(sdkerrors.ErrNoSession, "[RefreshToken]")
	}
	if current.RefreshToken == "" {
		return "", errors.Wrap(sdkerrors.ErrNoRefreshToken, "[RefreshToken]")
	}

	tok, err := v.api.Refresh(ctx, *creds, current.RefreshToken)
	if err != nil {
		v.logger.Warn().Err(err).Msg("token refresh failed")
		return "", errors.Wrap(err, "[RefreshToken]")
	}
	refreshed := v.sessionFromToken(tok, current.Permissions)

	v.mu.Lock()
	defer v.mu.Unlock()
	// A logout or new authorization while the call was in flight wins.
	if v.session == nil || v.session.AccessToken != current.AccessToken {
		return "", errors.Wrap(sdkerrors.ErrNoSession, "[RefreshToken] session changed during refresh")
	}
	next := v.session.Clone()
	next.AccessToken = refreshed.AccessToken
	next.ExpiresAt = refreshed.ExpiresAt
	if refreshed.RefreshToken != "" {
		next.RefreshToken = refreshed.RefreshToken
	}
	v.session = next
	v.persistLocked()
	v.logger.Info().Time("expires_at", next.ExpiresAt).Msg("token refreshed")
	return next.AccessToken, nil
}

// FetchCurrentUser loads the authorized user's profile and stores it on the session.
func (v *Venmo) FetchCurrentUser(ctx context.Context) (*session.User, error) {
	token, err := v.validAccessToken()
	if err != nil {
		return nil, errors.Wrap(err, "[FetchCurrentUser]")
	}

	user, err := v.api.CurrentUser(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "[FetchCurrentUser]")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session != nil && v.session.AccessToken == token {
		next := v.session.Clone()
		u := *user
		next.User = &u
		v.session = next
		v.persistLocked()
	}
	return user, nil
}

// Logout forgets the session in memory and in the cache. It does not revoke
// the app's authorization with the provider.
func (v *Venmo) Logout() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.session = nil
	if v.creds == nil || v.cache == nil {
		return nil
	}
	if err := v.cache.Delete(v.creds.AppID); err != nil {
		return errors.Wrap(err, "[Logout] failed to delete cached session")
	}
	v.logger.Info().Str("app_id", v.creds.AppID).Msg("logged out")
	return nil
}

// validAccessToken returns the token of a valid session, or ErrNoSession /
// ErrTokenExpired.
func (v *Venmo) validAccessToken() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.session.IsOpen() {
		return "", sdkerrors.ErrNoSession
	}
	if !v.session.IsValid(v.nowTime()) {
		return "", sdkerrors.ErrTokenExpired
	}
	return v.session.AccessToken, nil
}

func (v *Venmo) replaceSession(s *session.Session) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.session = s.Clone()
	v.persistLocked()
}

// persistLocked writes the session to the cache. A failed write is logged,
// not returned: the in-memory session stays authoritative for this process.
func (v *Venmo) persistLocked() {
	if v.creds == nil || v.cache == nil || v.session == nil {
		return
	}
	if err := v.cache.Save(v.creds.AppID, v.session); err != nil {
		v.logger.Warn().Err(err).Str("app_id", v.creds.AppID).Msg("failed to persist session")
	}
}
