package sdk_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/sdk"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/stretchr/testify/require"
)

func testPayment() transaction.Request {
	return transaction.Request{
		RecipientHandle:  "friend@example.com",
		Type:             transaction.TypePay,
		AmountMinorUnits: 1250,
		Note:             "pizza",
	}
}

func TestSendTransaction_API(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, true)
	f.start(t)
	f.authorize(t, oauthmodel.PermissionMakePayments)
	launches := f.launcher.count()

	req := testPayment()
	req.Type = transaction.TypeCharge
	req.Audience = transaction.AudienceFriends
	res := receive(t, f.venmo.SendTransaction(ctx, req, sdk.WithMethod(transaction.MethodAPI)))
	require.NoError(t, res.Err)
	require.Equal(t, transaction.MethodAPI, res.Method)
	require.Equal(t, transaction.TypeCharge, res.Transaction.Type)
	require.Equal(t, transaction.Amount(1250), res.Transaction.Amount)
	require.Equal(t, "friend@example.com", res.Transaction.Target.Email)

	require.Equal(t, launches, f.launcher.count(), "api sends must not switch apps")
	payments := f.provider.Payments()
	require.Len(t, payments, 1)
	require.Equal(t, "-12.50", payments[0].Get("amount"))
	require.Equal(t, "friends", payments[0].Get("audience"))
	require.Equal(t, "pizza", payments[0].Get("note"))

	fetched, err := f.venmo.FetchTransaction(ctx, res.Transaction.ID)
	require.NoError(t, err)
	require.Equal(t, res.Transaction.ID, fetched.ID)
}

func TestSendTransaction_APIDefaultsToPrivateAudience(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, true, sdk.WithDefaultTransactionMethod(transaction.MethodAPI))
	f.start(t)
	f.authorize(t, oauthmodel.PermissionMakePayments)

	res := receive(t, f.venmo.SendTransaction(ctx, testPayment()))
	require.NoError(t, res.Err)
	require.Equal(t, transaction.MethodAPI, res.Method)
	require.Equal(t, "private", f.provider.Payments()[0].Get("audience"))
}

func TestSendTransaction_APIFallsBackToAppSwitch(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *testFixture)
	}{
		{"no session", func(t *testing.T, f *testFixture) {}},
		{"expired session", func(t *testing.T, f *testFixture) {
			f.authorize(t, oauthmodel.PermissionMakePayments)
			f.clock.Advance(90 * 24 * time.Hour)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setupTestFixture(t, true)
			f.start(t)
			tt.setup(t, f)
			launches := f.launcher.count()

			result := f.venmo.SendTransaction(ctx, testPayment(), sdk.WithMethod(transaction.MethodAPI))

			require.Equal(t, launches+1, f.launcher.count())
			launched := f.launcher.last(t)
			require.Equal(t, appswitch.HostPayCharge, launched.Host)
			require.Equal(t, "pay", launched.Query().Get("txn"))
			require.Equal(t, "friend@example.com", launched.Query().Get("recipients"))
			require.Equal(t, "12.50", launched.Query().Get("amount"))
			require.Equal(t, "myapp://transaction", launched.Query().Get("redirect_uri"))
			require.Empty(t, f.provider.Payments())

			callback, err := f.provider.Respond(launched)
			require.NoError(t, err)
			require.True(t, f.venmo.HandleCallbackURL(ctx, callback))

			res := receive(t, result)
			require.NoError(t, res.Err)
			require.Equal(t, transaction.MethodAppSwitch, res.Method)
			require.Equal(t, "pizza", res.Transaction.Note)
			require.Equal(t, transaction.Amount(1250), res.Transaction.Amount)
			require.Empty(t, f.provider.Payments())
		})
	}
}

func TestSendTransaction_StrictAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t, true, sdk.WithStrictAPIMethod())
		f.start(t)
		res := receive(t, f.venmo.SendTransaction(ctx, testPayment(), sdk.WithMethod(transaction.MethodAPI)))
		require.ErrorIs(t, res.Err, sdk.ErrNoSession)
		require.Equal(t, transaction.MethodAPI, res.Method)
		require.Zero(t, f.launcher.count())
	})

	t.Run("expired session", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.seedSession(t, time.Minute)
		f.start(t)
		f.clock.Advance(time.Hour)
		res := receive(t, f.venmo.SendTransaction(ctx, testPayment(),
			sdk.WithMethod(transaction.MethodAPI), sdk.WithStrictAPI(true)))
		require.ErrorIs(t, res.Err, sdk.ErrTokenExpired)
		require.Zero(t, f.launcher.count())
	})
}

func TestSendTransaction_AppSwitch(t *testing.T) {
	ctx := context.Background()

	t.Run("charge round trip", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.start(t)
		req := testPayment()
		req.Type = transaction.TypeCharge
		req.RecipientHandle = "555-123-4567"
		result := f.venmo.SendTransaction(ctx, req)
		require.True(t, f.venmo.AwaitingCallback())

		launched := f.launcher.last(t)
		require.Equal(t, "charge", launched.Query().Get("txn"))
		require.NotEmpty(t, launched.Query().Get("request_id"))

		callback, err := f.provider.Respond(launched)
		require.NoError(t, err)
		require.True(t, f.venmo.HandleCallbackURL(ctx, callback))

		res := receive(t, result)
		require.NoError(t, res.Err)
		require.Equal(t, transaction.TypeCharge, res.Transaction.Type)
		require.Equal(t, transaction.RecipientPhone, res.Transaction.Target.Type)
		require.Len(t, result, 0)
		require.False(t, f.venmo.AwaitingCallback())
	})

	t.Run("second send while pending", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.start(t)
		first := f.venmo.SendTransaction(ctx, testPayment())
		second := receive(t, f.venmo.SendTransaction(ctx, testPayment()))
		require.ErrorIs(t, second.Err, sdk.ErrRequestInProgress)
		require.Equal(t, 1, f.launcher.count())

		f.venmo.Reset()
		require.ErrorIs(t, receive(t, first).Err, context.Canceled)
	})

	t.Run("app not installed", func(t *testing.T) {
		f := setupTestFixture(t, false)
		f.start(t)
		res := receive(t, f.venmo.SendTransaction(ctx, testPayment()))
		require.ErrorIs(t, res.Err, sdk.ErrAppNotInstalled)
		require.Zero(t, f.launcher.count())
	})

	t.Run("user denied", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.start(t)
		result := f.venmo.SendTransaction(ctx, testPayment())
		callback, err := f.provider.Deny(f.launcher.last(t))
		require.NoError(t, err)
		require.True(t, f.venmo.HandleCallbackURL(ctx, callback))
		require.ErrorIs(t, receive(t, result).Err, sdk.ErrRequestDenied)
	})

	t.Run("forged signed request", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.start(t)
		result := f.venmo.SendTransaction(ctx, testPayment())
		requestID := f.launcher.last(t).Query().Get("request_id")

		forged, err := appswitch.SignTransaction(requestID, transaction.Transaction{ID: "forged"}, "not-the-secret", f.clock.Now())
		require.NoError(t, err)
		q := url.Values{}
		q.Set("request_id", requestID)
		q.Set("signed_request", forged)
		require.True(t, f.venmo.HandleCallbackURL(ctx, "myapp://transaction?"+q.Encode()))

		res := receive(t, result)
		require.ErrorIs(t, res.Err, sdk.ErrMalformedCallback)
		require.Nil(t, res.Transaction)
	})

	t.Run("callback for another request", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.start(t)
		result := f.venmo.SendTransaction(ctx, testPayment())
		require.False(t, f.venmo.HandleCallbackURL(ctx, "myapp://transaction?request_id=someone-else"))
		require.Len(t, result, 0)
		f.venmo.Reset()
	})
}

func TestSendTransaction_Invalid(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, true)

	res := receive(t, f.venmo.SendTransaction(ctx, testPayment()))
	require.ErrorIs(t, res.Err, sdk.ErrInvalidCredentials)

	f.start(t)
	tests := []struct {
		name   string
		mutate func(r *transaction.Request)
	}{
		{"zero amount", func(r *transaction.Request) { r.AmountMinorUnits = 0 }},
		{"empty note", func(r *transaction.Request) { r.Note = "  " }},
		{"no recipient", func(r *transaction.Request) { r.RecipientHandle = "" }},
		{"unknown type", func(r *transaction.Request) { r.Type = "gift" }},
		{"unknown audience", func(r *transaction.Request) { r.Audience = "everyone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testPayment()
			tt.mutate(&req)
			res := receive(t, f.venmo.SendTransaction(ctx, req))
			require.ErrorIs(t, res.Err, sdk.ErrInvalidTransaction)
		})
	}
	require.Zero(t, f.launcher.count())
}

func TestDefaultTransactionMethod(t *testing.T) {
	f := setupTestFixture(t, true)
	require.Equal(t, transaction.MethodAppSwitch, f.venmo.DefaultTransactionMethod())
	f.venmo.SetDefaultTransactionMethod(transaction.MethodAPI)
	require.Equal(t, transaction.MethodAPI, f.venmo.DefaultTransactionMethod())
}

func TestResetDuringLaunch(t *testing.T) {
	ctx := context.Background()
	var venmo *sdk.Venmo
	resetting := appswitch.LauncherFunc(func(context.Context, *url.URL) bool {
		venmo.Reset()
		return false
	})

	t.Run("oauth", func(t *testing.T) {
		f := setupTestFixture(t, true, sdk.WithLauncher(resetting))
		venmo = f.venmo
		f.start(t)

		res := receive(t, f.venmo.RequestPermissions(ctx, oauthmodel.PermissionMakePayments))
		require.ErrorIs(t, res.Err, context.Canceled)
		require.False(t, f.venmo.AwaitingCallback())
	})

	t.Run("transaction", func(t *testing.T) {
		f := setupTestFixture(t, true, sdk.WithLauncher(resetting))
		venmo = f.venmo
		f.start(t)

		result := f.venmo.SendTransaction(ctx, testPayment(), sdk.WithMethod(transaction.MethodAppSwitch))
		res := receive(t, result)
		require.ErrorIs(t, res.Err, context.Canceled)
		require.Len(t, result, 0)
		require.False(t, f.venmo.AwaitingCallback())
	})
}
