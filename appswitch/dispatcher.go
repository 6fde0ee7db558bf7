// Package appswitch encodes requests into the native app's URL scheme, hands
// them to the platform, and decodes the callback URLs that come back.
package appswitch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/rs/zerolog"
)

// Hosts of the app's URL scheme. On the callback side the host is the
// payload-type tag.
const (
	HostOAuth       = "oauth"
	HostPayCharge   = "paycharge"
	HostTransaction = "transaction"
)

// Transaction URL keys.
const (
	ParamTxn           = "txn"
	ParamRecipients    = "recipients"
	ParamAmount        = "amount"
	ParamNote          = "note"
	ParamRequestID     = "request_id"
	ParamSignedRequest = "signed_request"
)

type Dispatcher struct {
	scheme   string
	launcher Launcher
	logger   zerolog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher for the app registered under scheme.
func NewDispatcher(scheme string, launcher Launcher, opts ...DispatcherOption) *Dispatcher {
	if launcher == nil {
		launcher = Unavailable{}
	}
	d := &Dispatcher{
		scheme:   scheme,
		launcher: launcher,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsAppInstalled probes whether the platform resolves the app's scheme.
func (d *Dispatcher) IsAppInstalled() bool {
	return d.launcher.CanOpenURL(&url.URL{Scheme: d.scheme, Host: HostOAuth})
}

// AuthorizeURL builds <scheme>://oauth/authorize?... for an app switch OAuth request.
func (d *Dispatcher) AuthorizeURL(params *oauthmodel.AuthorizationParameters) (*url.URL, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("[AuthorizeURL] %w", err)
	}
	return &url.URL{
		Scheme:   d.scheme,
		Host:     HostOAuth,
		Path:     "/authorize",
		RawQuery: params.Query().Encode(),
	}, nil
}

// TransactionParams is everything encoded into a pay/charge launch URL.
type TransactionParams struct {
	AppID       string
	AppName     string
	RequestID   string
	RedirectURI string
	SDKVersion  string
	Request     transaction.Request
}

// TransactionURL builds <scheme>://paycharge?... for an app switch send.
func (d *Dispatcher) TransactionURL(p TransactionParams) (*url.URL, error) {
	if err := p.Request.Validate(); err != nil {
		return nil, fmt.Errorf("[TransactionURL] %w", err)
	}
	if p.AppID == "" {
		return nil, fmt.Errorf("[TransactionURL] %w", oauthmodel.ErrMissingAppID)
	}
	appName := p.AppName
	if appName == "" {
		appName = p.AppID
	}

	q := url.Values{}
	q.Set(ParamTxn, string(p.Request.Type))
	q.Set(ParamRecipients, p.Request.RecipientHandle)
	q.Set(ParamAmount, transaction.FormatAmount(p.Request.AmountMinorUnits))
	q.Set(ParamNote, p.Request.Note)
	q.Set(oauthmodel.ParamAppID, p.AppID)
	q.Set(oauthmodel.ParamAppName, appName)
	q.Set(ParamRequestID, p.RequestID)
	q.Set(oauthmodel.ParamClient, oauthmodel.ClientName)
	if p.RedirectURI != "" {
		q.Set(oauthmodel.ParamRedirectURI, p.RedirectURI)
	}
	if p.SDKVersion != "" {
		q.Set(oauthmodel.ParamSDKVersion, p.SDKVersion)
	}

	return &url.URL{
		Scheme:   d.scheme,
		Host:     HostPayCharge,
		RawQuery: q.Encode(),
	}, nil
}

// Launch asks the platform to open u.
func (d *Dispatcher) Launch(ctx context.Context, u *url.URL) bool {
	ok := d.launcher.OpenURL(ctx, u)
	d.logger.Debug().Str("scheme", u.Scheme).Str("host", u.Host).Bool("opened", ok).Msg("launch")
	return ok
}
