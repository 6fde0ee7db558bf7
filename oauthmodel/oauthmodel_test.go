package oauthmodel_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestPermissions(t *testing.T) {
	t.Run("normalised", func(t *testing.T) {
		ps := oauthmodel.NewPermissions(" make_payments", "access_profile", "make_payments", "")
		require.Equal(t, oauthmodel.Permissions{"access_profile", "make_payments"}, ps)
		require.Equal(t, "access_profile,make_payments", ps.CSV())
		require.True(t, ps.Contains(oauthmodel.PermissionMakePayments))
		require.False(t, ps.Contains(oauthmodel.PermissionAccessFeed))
	})

	t.Run("parse either separator", func(t *testing.T) {
		require.Equal(t, oauthmodel.ParsePermissions("access_feed,make_payments"),
			oauthmodel.ParsePermissions("make_payments access_feed"))
		require.Empty(t, oauthmodel.ParsePermissions(""))
	})

	t.Run("validate", func(t *testing.T) {
		require.ErrorIs(t, oauthmodel.Permissions{}.Validate(), oauthmodel.ErrNoPermissions)
		require.ErrorIs(t, oauthmodel.NewPermissions("make_coffee").Validate(), oauthmodel.ErrUnknownPermission)
		require.NoError(t, oauthmodel.NewPermissions(oauthmodel.PermissionAccessBalance).Validate())
	})
}

func TestAuthorizationParameters(t *testing.T) {
	valid := func() *oauthmodel.AuthorizationParameters {
		return &oauthmodel.AuthorizationParameters{
			AppID:       "123",
			AppName:     "Pizza & Co",
			Permissions: oauthmodel.NewPermissions(oauthmodel.PermissionMakePayments),
			RedirectURI: "venmo123://oauth",
			State:       "xyz",
		}
	}

	t.Run("query", func(t *testing.T) {
		q := valid().Query()
		require.Equal(t, "123", q.Get("app_id"))
		require.Equal(t, "Pizza & Co", q.Get("app_name"))
		require.Equal(t, "make_payments", q.Get("permissions"))
		require.Equal(t, "token", q.Get("response_type"))
		require.Equal(t, "xyz", q.Get("state"))
		require.Equal(t, oauthmodel.ClientName, q.Get("client"))
		require.Contains(t, q.Encode(), "app_name=Pizza+%26+Co")
	})

	t.Run("app name defaults to app id", func(t *testing.T) {
		p := valid()
		p.AppName = ""
		require.Equal(t, "123", p.Query().Get("app_name"))
	})

	tests := []struct {
		name   string
		mutate func(p *oauthmodel.AuthorizationParameters)
		err    error
	}{
		{"missing app id", func(p *oauthmodel.AuthorizationParameters) { p.AppID = " " }, oauthmodel.ErrMissingAppID},
		{"missing redirect", func(p *oauthmodel.AuthorizationParameters) { p.RedirectURI = "" }, oauthmodel.ErrMissingRedirectURI},
		{"no permissions", func(p *oauthmodel.AuthorizationParameters) { p.Permissions = nil }, oauthmodel.ErrNoPermissions},
		{"bad response type", func(p *oauthmodel.AuthorizationParameters) { p.ResponseType = "id_token" }, oauthmodel.ErrInvalidResponseType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			require.ErrorIs(t, p.Validate(), tt.err)
		})
	}
}

func TestTokenResponseFromQuery(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	requested := oauthmodel.NewPermissions(oauthmodel.PermissionMakePayments)

	t.Run("expires_in", func(t *testing.T) {
		q, _ := url.ParseQuery("access_token=tok123&expires_in=5184000&refresh_token=r")
		tr, err := oauthmodel.TokenResponseFromQuery(q)
		require.NoError(t, err)
		expiry, err := tr.Expiry(now)
		require.NoError(t, err)
		require.Equal(t, now.Add(60*24*time.Hour), expiry)
		require.Equal(t, requested, tr.GrantedPermissions(requested))
	})

	t.Run("expires_at", func(t *testing.T) {
		for _, raw := range []string{"1717243200", "2024-06-01T12:00:00Z"} {
			q := url.Values{"access_token": {"t"}, "expires_at": {raw}}
			tr, err := oauthmodel.TokenResponseFromQuery(q)
			require.NoError(t, err)
			expiry, err := tr.Expiry(now)
			require.NoError(t, err)
			require.True(t, expiry.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)), raw)
		}
	})

	t.Run("granted permissions", func(t *testing.T) {
		q := url.Values{"access_token": {"t"}, "expires_in": {"60"}, "permissions": {"access_profile"}}
		tr, err := oauthmodel.TokenResponseFromQuery(q)
		require.NoError(t, err)
		require.Equal(t, oauthmodel.Permissions{"access_profile"}, tr.GrantedPermissions(requested))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := oauthmodel.TokenResponseFromQuery(url.Values{"expires_in": {"60"}})
		require.ErrorIs(t, err, oauthmodel.ErrMissingAccessToken)
		_, err = oauthmodel.TokenResponseFromQuery(url.Values{"access_token": {"t"}})
		require.ErrorIs(t, err, oauthmodel.ErrMissingExpiry)
		_, err = oauthmodel.TokenResponseFromQuery(url.Values{"access_token": {"t"}, "expires_in": {"soon"}})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidExpiry)
		_, err = oauthmodel.TokenResponseFromQuery(url.Values{"access_token": {"t"}, "expires_in": {"10000000000"}})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidExpiry)

		huge := oauthmodel.MaxExpiresIn + 1
		_, err = (&oauthmodel.TokenResponse{ExpiresIn: &huge}).Expiry(now)
		require.ErrorIs(t, err, oauthmodel.ErrInvalidExpiry)

		tr, err := oauthmodel.TokenResponseFromQuery(url.Values{"access_token": {"t"}, "expires_at": {"tomorrow"}})
		require.NoError(t, err)
		_, err = tr.Expiry(now)
		require.ErrorIs(t, err, oauthmodel.ErrInvalidExpiry)
	})
}

func TestCallbackErrorFromQuery(t *testing.T) {
	require.Nil(t, oauthmodel.CallbackErrorFromQuery(url.Values{"access_token": {"t"}}))

	cbErr := oauthmodel.CallbackErrorFromQuery(url.Values{
		"error":             {"access_denied"},
		"error_description": {"The user denied the request."},
	})
	require.NotNil(t, cbErr)
	require.Equal(t, "access_denied", cbErr.Code)
	require.Equal(t, "access_denied: The user denied the request.", cbErr.Error())
}

func TestAppCredentials(t *testing.T) {
	require.ErrorIs(t, oauthmodel.AppCredentials{AppSecret: "s"}.Validate(), oauthmodel.ErrMissingAppID)
	require.ErrorIs(t, oauthmodel.AppCredentials{AppID: "1"}.Validate(), oauthmodel.ErrMissingAppSecret)
	require.NoError(t, oauthmodel.AppCredentials{AppID: "1", AppSecret: "s"}.Validate())
	require.Equal(t, "1", oauthmodel.AppCredentials{AppID: "1"}.DisplayName())
	require.Equal(t, "Shop", oauthmodel.AppCredentials{AppID: "1", AppName: "Shop"}.DisplayName())
}
