package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/api"
	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/internal/fakeprovider"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/stretchr/testify/require"
)

var testCreds = oauthmodel.AppCredentials{AppID: "123", AppSecret: "secret", AppName: "MyApp"}

func setupProvider(t *testing.T) (*fakeprovider.Provider, *api.Client) {
	t.Helper()
	p := fakeprovider.New(testCreds.AppID, testCreds.AppSecret, session.User{ID: "u1", DisplayName: "John Doe"})
	srv := httptest.NewServer(p.Router())
	t.Cleanup(srv.Close)
	return p, api.NewClient(srv.URL+"/", api.WithTimeout(5*time.Second))
}

func TestClient_CurrentUser(t *testing.T) {
	ctx := context.Background()
	p, c := setupProvider(t)
	access, _, _ := p.IssueToken("access_profile")

	user, err := c.CurrentUser(ctx, access)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "John Doe", user.DisplayName)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	p, c := setupProvider(t)

	t.Run("no token", func(t *testing.T) {
		_, err := c.CurrentUser(ctx, "")
		require.ErrorIs(t, err, sdkerrors.ErrNoSession)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := c.CurrentUser(ctx, "bogus")
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		require.Equal(t, http.StatusUnauthorized, te.StatusCode)
		require.Equal(t, 261, te.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		access, _, _ := p.IssueToken("access_profile")
		p.ExpireToken(access)
		_, err := c.CurrentUser(ctx, access)
		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		require.Equal(t, 262, te.Code)
		require.Contains(t, te.Error(), "Access token expired.")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		_, err := api.NewClient(srv.URL).CurrentUser(ctx, "t")
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		require.Zero(t, te.StatusCode)
		require.Error(t, te.Unwrap())
	})

	t.Run("not json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}))
		defer srv.Close()
		_, err := api.NewClient(srv.URL).CurrentUser(ctx, "t")
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
	})
}

func TestClient_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	p, c := setupProvider(t)
	access, _, _ := p.IssueToken("make_payments")

	txn, err := c.CreateTransaction(ctx, access, transaction.Request{
		RecipientHandle:  "1088551785594880949",
		Type:             transaction.TypePay,
		AmountMinorUnits: 2000,
		Note:             "rent",
	})
	require.NoError(t, err)
	require.NotEmpty(t, txn.ID)
	require.Equal(t, transaction.StatusSettled, txn.Status)
	require.Equal(t, transaction.RecipientUserID, txn.Target.Type)
	require.Equal(t, "1088551785594880949", txn.Target.User.ID)
	require.Equal(t, transaction.Amount(2000), txn.Amount)

	form := p.Payments()[0]
	require.Equal(t, "1088551785594880949", form.Get("user_id"))
	require.Empty(t, form.Get("phone"))
	require.Equal(t, "20.00", form.Get("amount"))
	require.Equal(t, "private", form.Get("audience"))

	fetched, err := c.Transaction(ctx, access, txn.ID)
	require.NoError(t, err)
	require.Equal(t, txn.ID, fetched.ID)

	_, err = c.CreateTransaction(ctx, access, transaction.Request{})
	require.ErrorIs(t, err, sdkerrors.ErrInvalidTransaction)
}

func TestClient_OAuth(t *testing.T) {
	ctx := context.Background()
	_, c := setupProvider(t)
	perms := oauthmodel.NewPermissions(oauthmodel.PermissionMakePayments)

	t.Run("auth code url", func(t *testing.T) {
		raw := c.AuthCodeURL(testCreds, "myapp://oauth", perms, "state-1")
		require.Contains(t, raw, "/oauth/authorize?")
		require.Contains(t, raw, "client_id=123")
		require.Contains(t, raw, "state=state-1")
		require.Contains(t, raw, "app_name=MyApp")
		require.Contains(t, raw, "scope=make_payments")
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := c.Exchange(ctx, testCreds, "myapp://oauth", "nope")
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
	})

	t.Run("refresh", func(t *testing.T) {
		p, c := setupProvider(t)
		_, refresh, _ := p.IssueToken("make_payments")

		tok, err := c.Refresh(ctx, testCreds, refresh)
		require.NoError(t, err)
		require.NotEmpty(t, tok.AccessToken)
		require.NotEqual(t, refresh, tok.RefreshToken)
		require.Equal(t, "make_payments", tok.Extra("permissions"))

		// Refresh tokens are single use.
		_, err = c.Refresh(ctx, testCreds, refresh)
		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		require.Equal(t, http.StatusBadRequest, te.StatusCode)
	})

	t.Run("bad client secret", func(t *testing.T) {
		p, c := setupProvider(t)
		_, refresh, _ := p.IssueToken("make_payments")
		_, err := c.Refresh(ctx, oauthmodel.AppCredentials{AppID: "123", AppSecret: "wrong"}, refresh)
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
	})

	t.Run("no refresh token", func(t *testing.T) {
		_, err := c.Refresh(ctx, testCreds, "")
		require.ErrorIs(t, err, sdkerrors.ErrNoRefreshToken)
		require.NotErrorIs(t, err, sdkerrors.ErrNoSession)
	})

	t.Run("exchange honours the client timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)
		slow := api.NewClient(srv.URL, api.WithTimeout(50*time.Millisecond))

		start := time.Now()
		_, err := slow.Exchange(ctx, testCreds, "myapp://oauth", "code")
		require.ErrorIs(t, err, sdkerrors.ErrTransport)
		require.Less(t, time.Since(start), 5*time.Second)
	})
}
