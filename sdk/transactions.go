package sdk

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/authflow"
	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/pkg/errors"
)

type sendOptions struct {
	method    *transaction.Method
	strictAPI *bool
}

// SendOption adjusts a single SendTransaction call.
type SendOption func(*sendOptions)

// WithMethod overrides the default transaction method for one call.
func WithMethod(m transaction.Method) SendOption {
	return func(o *sendOptions) {
		o.method = &m
	}
}

// WithStrictAPI controls the fallback for one call: when strict, an API send
// without a valid session fails instead of switching to the app.
func WithStrictAPI(strict bool) SendOption {
	return func(o *sendOptions) {
		o.strictAPI = &strict
	}
}

// SendTransaction dispatches req through the app switch or the API. An API
// send without a valid session falls back to app switch unless strict mode
// is on; TransactionResult.Method reports the path taken. The channel
// receives exactly one result: API sends complete when the call returns, app
// switch sends when HandleCallbackURL gets the matching callback.
func (v *Venmo) SendTransaction(ctx context.Context, req transaction.Request, opts ...SendOption) <-chan TransactionResult {
	result := make(chan TransactionResult, 1)

	v.mu.Lock()
	o := sendOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	method := v.defaultMethod
	if o.method != nil {
		method = *o.method
	}
	strict := v.strictAPI
	if o.strictAPI != nil {
		strict = *o.strictAPI
	}
	creds := v.creds
	scheme := v.callbackSchemeLocked()
	open := v.session.IsOpen()
	valid := v.session.IsValid(v.nowTime())
	var token string
	if valid {
		token = v.session.AccessToken
	}
	v.mu.Unlock()

	fail := func(m transaction.Method, err error) <-chan TransactionResult {
		result <- TransactionResult{Method: m, Err: err}
		return result
	}

	if creds == nil {
		return fail(method, errors.Wrap(sdkerrors.ErrInvalidCredentials, "[SendTransaction] sdk not started"))
	}
	if err := req.Validate(); err != nil {
		return fail(method, errors.Wrap(err, "[SendTransaction]"))
	}

	if method == transaction.MethodAPI && !valid {
		if strict {
			err := sdkerrors.ErrNoSession
			if open {
				err = sdkerrors.ErrTokenExpired
			}
			return fail(method, errors.Wrap(err, "[SendTransaction] api method requires a valid session"))
		}
		v.logger.Warn().Bool("session_open", open).Msg("no valid session for api send, falling back to app switch")
		method = transaction.MethodAppSwitch
	}

	switch method {
	case transaction.MethodAPI:
		go func() {
			txn, err := v.api.CreateTransaction(ctx, token, req)
			if err != nil {
				err = errors.Wrap(err, "[SendTransaction]")
			}
			result <- TransactionResult{Transaction: txn, Method: transaction.MethodAPI, Err: err}
		}()
		return result
	case transaction.MethodAppSwitch:
		return v.sendAppSwitch(ctx, *creds, scheme, req, result)
	}
	return fail(method, fmt.Errorf("[SendTransaction] unknown method %s", method))
}

func (v *Venmo) sendAppSwitch(ctx context.Context, creds oauthmodel.AppCredentials, scheme string, req transaction.Request, result chan TransactionResult) <-chan TransactionResult {
	fail := func(err error) <-chan TransactionResult {
		result <- TransactionResult{Method: transaction.MethodAppSwitch, Err: err}
		return result
	}

	if !v.appSwitch.IsAppInstalled() {
		return fail(errors.Wrap(sdkerrors.ErrAppNotInstalled, "[SendTransaction]"))
	}

	pending := authflow.NewPendingTransaction(req, v.nowTime())
	tr := &transactionRequest{pending: pending, result: result}
	if err := v.txns.Begin(tr); err != nil {
		return fail(err)
	}

	launchURL, err := v.appSwitch.TransactionURL(appswitch.TransactionParams{
		AppID:       creds.AppID,
		AppName:     creds.DisplayName(),
		RequestID:   pending.RequestID,
		RedirectURI: appswitch.CallbackURL(scheme, appswitch.HostTransaction),
		SDKVersion:  Version,
		Request:     req,
	})
	if err != nil {
		if !v.txns.Abandon(tr) {
			return result
		}
		return fail(errors.Wrap(err, "[SendTransaction]"))
	}
	if !v.appSwitch.Launch(ctx, launchURL) {
		if !v.txns.Abandon(tr) {
			return result
		}
		return fail(errors.Wrap(sdkerrors.ErrAppNotInstalled, "[SendTransaction] launch failed"))
	}

	v.logger.Info().Str("request_id", pending.RequestID).Str("type", string(req.Type)).Msg("awaiting transaction callback")
	return result
}

func (v *Venmo) handleTransactionCallback(cb *appswitch.Callback) bool {
	creds, ok := v.Credentials()
	if !ok {
		return false
	}
	now := v.nowTime()

	requestID := cb.Query.Get(appswitch.ParamRequestID)
	signed := cb.Query.Get(appswitch.ParamSignedRequest)
	var claims *appswitch.SignedTransaction
	var verifyErr error
	if signed != "" {
		claims, verifyErr = appswitch.VerifySignedRequest(signed, creds.AppSecret, now)
		if requestID == "" && verifyErr == nil {
			requestID = claims.RequestID
		}
	}
	if requestID == "" {
		v.logger.Debug().Err(sdkerrors.ErrCallbackMismatch).Msg("transaction callback carries no request id")
		return false
	}

	tr, ok := v.txns.Resolve(func(r *transactionRequest) bool {
		return r.pending.RequestID == requestID
	})
	if !ok {
		v.logger.Debug().Err(sdkerrors.ErrCallbackMismatch).Str("request_id", requestID).Msg("ignoring transaction callback")
		return false
	}

	res := TransactionResult{Method: transaction.MethodAppSwitch}
	cbErr := oauthmodel.CallbackErrorFromQuery(cb.Query)
	switch {
	case cbErr != nil:
		res.Err = fmt.Errorf("%w: %w", sdkerrors.ErrRequestDenied, cbErr)
	case signed == "":
		res.Err = fmt.Errorf("%w: no signed_request", sdkerrors.ErrMalformedCallback)
	case verifyErr != nil:
		res.Err = fmt.Errorf("%w: %w", sdkerrors.ErrMalformedCallback, verifyErr)
	case claims.RequestID != requestID:
		res.Err = fmt.Errorf("%w: signed request id does not match", sdkerrors.ErrMalformedCallback)
	default:
		txn := claims.Transaction
		res.Transaction = &txn
	}

	if res.Err != nil {
		v.logger.Warn().Err(res.Err).Str("request_id", requestID).Msg("transaction failed")
	} else {
		v.logger.Info().Str("request_id", requestID).Str("transaction_id", res.Transaction.ID).Msg("transaction completed")
	}
	tr.result <- res
	return true
}

// FetchTransaction loads a transaction by id through the API.
func (v *Venmo) FetchTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	token, err := v.validAccessToken()
	if err != nil {
		return nil, errors.Wrap(err, "[FetchTransaction]")
	}
	txn, err := v.api.Transaction(ctx, token, id)
	if err != nil {
		return nil, errors.Wrap(err, "[FetchTransaction]")
	}
	return txn, nil
}
