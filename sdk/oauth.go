package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/authflow"
	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// RequestPermissions starts an OAuth request. It switches to the provider's
// app when installed and opens the browser authorization page otherwise.
// The returned channel receives exactly one result, once HandleCallbackURL
// has been given the matching callback. Only one request may be outstanding;
// a second one completes immediately with ErrRequestInProgress.
func (v *Venmo) RequestPermissions(ctx context.Context, perms ...oauthmodel.Permission) <-chan OAuthResult {
	result := make(chan OAuthResult, 1)
	fail := func(err error) <-chan OAuthResult {
		result <- OAuthResult{Err: err}
		return result
	}

	v.mu.Lock()
	creds := v.creds
	scheme := v.callbackSchemeLocked()
	now := v.nowTime()
	v.mu.Unlock()
	if creds == nil {
		return fail(errors.Wrap(sdkerrors.ErrInvalidCredentials, "[RequestPermissions] sdk not started"))
	}

	set := oauthmodel.NewPermissions(perms...)
	if err := set.Validate(); err != nil {
		return fail(errors.Wrap(err, "[RequestPermissions] invalid permissions"))
	}

	kind := authflow.WebFlow
	if v.appSwitch.IsAppInstalled() {
		kind = authflow.AppSwitchFlow
	}
	redirect := appswitch.CallbackURL(scheme, appswitch.HostOAuth)
	pending, err := authflow.NewPending(kind, set, redirect, now)
	if err != nil {
		return fail(errors.Wrap(err, "[RequestPermissions]"))
	}

	req := &oauthRequest{pending: pending, result: result}
	if err := v.oauth.Begin(req); err != nil {
		return fail(err)
	}

	launchURL, err := v.authorizationURL(*creds, pending)
	if err != nil {
		if !v.oauth.Abandon(req) {
			return result
		}
		return fail(errors.Wrap(err, "[RequestPermissions] failed to build authorization url"))
	}
	if !v.appSwitch.Launch(ctx, launchURL) {
		// A Reset or callback during the launch has already completed req.
		if !v.oauth.Abandon(req) {
			return result
		}
		return fail(errors.Wrapf(sdkerrors.ErrAppNotInstalled, "[RequestPermissions] nothing opened the %s flow", kind))
	}

	v.logger.Info().Str("flow", kind.String()).Str("request_id", pending.ID).
		Strs("permissions", set.Strings()).Msg("awaiting authorization callback")
	return result
}

func (v *Venmo) authorizationURL(creds oauthmodel.AppCredentials, p *authflow.Pending) (*url.URL, error) {
	switch p.Kind {
	case authflow.AppSwitchFlow:
		return v.appSwitch.AuthorizeURL(&oauthmodel.AuthorizationParameters{
			AppID:        creds.AppID,
			AppName:      creds.DisplayName(),
			Permissions:  p.Permissions,
			RedirectURI:  p.RedirectURI,
			ResponseType: oauthmodel.TokenResponseType,
			State:        p.State,
			SDKVersion:   Version,
		})
	case authflow.WebFlow:
		return url.Parse(v.api.AuthCodeURL(creds, p.RedirectURI, p.Permissions, p.State))
	}
	return nil, fmt.Errorf("unknown flow %s", p.Kind)
}

// HandleCallbackURL must receive every URL the host application is asked to
// open. It returns true when the URL completed a pending SDK request and
// false, without side effects, for any other URL.
func (v *Venmo) HandleCallbackURL(ctx context.Context, rawURL string) bool {
	cb, err := appswitch.ParseCallback(rawURL, v.CallbackScheme())
	if err != nil {
		return false
	}
	switch cb.Kind {
	case appswitch.CallbackOAuth:
		return v.handleOAuthCallback(ctx, cb)
	case appswitch.CallbackTransaction:
		return v.handleTransactionCallback(cb)
	}
	return false
}

func (v *Venmo) handleOAuthCallback(ctx context.Context, cb *appswitch.Callback) bool {
	state := cb.Query.Get(oauthmodel.ParamState)
	req, ok := v.oauth.Resolve(func(r *oauthRequest) bool {
		return r.pending.MatchesState(state)
	})
	if !ok {
		v.logger.Debug().Err(sdkerrors.ErrCallbackMismatch).Msg("ignoring oauth callback")
		return false
	}

	s, err := v.sessionFromCallback(ctx, req.pending, cb.Query)
	if err != nil {
		v.logger.Warn().Err(err).Str("request_id", req.pending.ID).Msg("authorization failed")
		req.result <- OAuthResult{Err: err}
		return true
	}

	v.replaceSession(s)
	v.logger.Info().Str("request_id", req.pending.ID).Time("expires_at", s.ExpiresAt).Msg("authorized")
	req.result <- OAuthResult{Session: s.Clone()}
	return true
}

func (v *Venmo) sessionFromCallback(ctx context.Context, p *authflow.Pending, q url.Values) (*session.Session, error) {
	if cbErr := oauthmodel.CallbackErrorFromQuery(q); cbErr != nil {
		return nil, fmt.Errorf("%w: %w", sdkerrors.ErrRequestDenied, cbErr)
	}

	if code := q.Get(oauthmodel.ParamCode); code != "" {
		creds, ok := v.Credentials()
		if !ok {
			return nil, sdkerrors.ErrInvalidCredentials
		}
		tok, err := v.api.Exchange(ctx, creds, p.RedirectURI, code)
		if err != nil {
			return nil, err
		}
		return v.sessionFromToken(tok, p.Permissions), nil
	}

	tr, err := oauthmodel.TokenResponseFromQuery(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sdkerrors.ErrMalformedCallback, err)
	}
	expiresAt, err := tr.Expiry(v.nowTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sdkerrors.ErrMalformedCallback, err)
	}
	s := &session.Session{
		AccessToken: *tr.AccessToken,
		ExpiresAt:   expiresAt,
		Permissions: tr.GrantedPermissions(p.Permissions),
	}
	if tr.RefreshToken != nil {
		s.RefreshToken = *tr.RefreshToken
	}
	return s, nil
}

// sessionFromToken converts a token endpoint response. The expiry is taken
// from expires_in against the SDK clock; responses without one get the
// configured default lifetime.
func (v *Venmo) sessionFromToken(tok *oauth2.Token, requested oauthmodel.Permissions) *session.Session {
	perms := requested
	if granted, ok := tok.Extra(oauthmodel.ParamPermissions).(string); ok && granted != "" {
		perms = oauthmodel.ParsePermissions(granted)
	}
	return &session.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    v.tokenExpiry(tok),
		Permissions:  perms,
	}
}

func (v *Venmo) tokenExpiry(tok *oauth2.Token) time.Time {
	now := v.nowTime()
	var seconds int64
	switch raw := tok.Extra(oauthmodel.ParamExpiresIn).(type) {
	case float64:
		seconds = int64(raw)
	case int64:
		seconds = raw
	case string:
		seconds, _ = strconv.ParseInt(raw, 10, 64)
	}
	switch {
	case seconds > oauthmodel.MaxExpiresIn:
		v.logger.Warn().Int64("expires_in", seconds).Msg("token lifetime out of range, using default")
	case seconds > 0:
		return now.Add(time.Duration(seconds) * time.Second)
	case !tok.Expiry.IsZero():
		return tok.Expiry
	}
	return now.Add(v.config.GetDefaultTokenLifetime())
}
