// Package sdk is the entry point for host applications: it authorizes the
// user with the payment provider and sends pay and charge transactions,
// either by switching to the provider's app or through its REST API.
//
// A Venmo value is created once at process start and passed to the code that
// needs it:
//
//	v := sdk.New(sdk.WithLauncher(platformLauncher))
//	cached, err := v.Start(appID, appSecret, "My App")
//	if !cached {
//	    res := <-v.RequestPermissions(ctx, oauthmodel.PermissionMakePayments)
//	}
//
// The host must forward every URL it is asked to open to HandleCallbackURL.
package sdk

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/api"
	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/authflow"
	"github.com/jrsteele09/go-venmo-sdk/internal/config"
	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/jrsteele09/go-venmo-sdk/session/filecache"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is reported to the provider on every launch URL.
const Version = "1.0.0"

// AppCredentials identify the host application.
type AppCredentials = oauthmodel.AppCredentials

// OAuthResult completes a RequestPermissions call. Err is nil on success.
type OAuthResult struct {
	Session *session.Session
	Err     error
}

// TransactionResult completes a SendTransaction call. Method records the path
// actually taken, which differs from the requested one after a fallback.
type TransactionResult struct {
	Transaction *transaction.Transaction
	Method      transaction.Method
	Err         error
}

type oauthRequest struct {
	pending *authflow.Pending
	result  chan OAuthResult
}

type transactionRequest struct {
	pending *authflow.PendingTransaction
	result  chan TransactionResult
}

// Venmo holds the SDK state for one host application.
type Venmo struct {
	mu            sync.Mutex
	creds         *oauthmodel.AppCredentials
	session       *session.Session
	cache         session.Cache
	ownsCache     bool
	defaultMethod transaction.Method

	config         config.Config
	strictAPI      bool
	apiBaseURL     string
	authorizeURL   string
	tokenURL       string
	appScheme      string
	callbackScheme string
	cacheDir       string
	httpClient     *http.Client
	launcher       appswitch.Launcher
	logger         zerolog.Logger
	nowTime        func() time.Time

	appSwitch *appswitch.Dispatcher
	api       *api.Client

	oauth authflow.Slot[oauthRequest]
	txns  authflow.Slot[transactionRequest]
}

// Option configures a Venmo.
type Option func(*Venmo)

// WithLauncher sets the platform URL opener. Without one the app is never
// considered installed and no URL can be launched.
func WithLauncher(l appswitch.Launcher) Option {
	return func(v *Venmo) {
		v.launcher = l
	}
}

// WithSessionCache replaces the default file cache.
func WithSessionCache(c session.Cache) Option {
	return func(v *Venmo) {
		v.cache = c
	}
}

// WithCacheDir sets the directory of the default file cache.
func WithCacheDir(dir string) Option {
	return func(v *Venmo) {
		v.cacheDir = dir
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(v *Venmo) {
		v.httpClient = hc
	}
}

// WithAPIBaseURL points the API dispatcher and OAuth endpoints at baseURL.
func WithAPIBaseURL(baseURL string) Option {
	return func(v *Venmo) {
		v.apiBaseURL = baseURL
		v.authorizeURL = baseURL + "/oauth/authorize"
		v.tokenURL = baseURL + "/oauth/access_token"
	}
}

func WithAuthorizeURL(u string) Option {
	return func(v *Venmo) {
		v.authorizeURL = u
	}
}

func WithTokenURL(u string) Option {
	return func(v *Venmo) {
		v.tokenURL = u
	}
}

// WithAppScheme sets the URL scheme of the provider's native app.
func WithAppScheme(scheme string) Option {
	return func(v *Venmo) {
		v.appScheme = scheme
	}
}

// WithCallbackScheme sets the host application's registered URL scheme.
// Defaults to "venmo<appID>".
func WithCallbackScheme(scheme string) Option {
	return func(v *Venmo) {
		v.callbackScheme = scheme
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(v *Venmo) {
		v.logger = logger
	}
}

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(v *Venmo) {
		v.nowTime = nowFunc
	}
}

func WithDefaultTransactionMethod(m transaction.Method) Option {
	return func(v *Venmo) {
		v.defaultMethod = m
	}
}

// WithStrictAPIMethod makes API sends fail with ErrNoSession or
// ErrTokenExpired instead of falling back to app switch.
func WithStrictAPIMethod() Option {
	return func(v *Venmo) {
		v.strictAPI = true
	}
}

// New creates an SDK instance. Defaults come from the environment.
func New(opts ...Option) *Venmo {
	cfg := config.New()
	v := &Venmo{
		config:        cfg,
		defaultMethod: transaction.MethodAppSwitch,
		apiBaseURL:    cfg.GetAPIBaseURL(),
		authorizeURL:  cfg.GetAuthorizeURL(),
		tokenURL:      cfg.GetTokenURL(),
		appScheme:     cfg.GetAppScheme(),
		cacheDir:      cfg.GetCacheDir(),
		httpClient:    &http.Client{},
		launcher:      appswitch.Unavailable{},
		logger:        log.Logger,
		nowTime:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	logger := v.logger.With().Str("component", "venmo-sdk").Logger()
	v.logger = logger
	v.appSwitch = appswitch.NewDispatcher(v.appScheme, v.launcher, appswitch.WithLogger(logger))
	v.api = api.NewClient(v.apiBaseURL,
		api.WithHTTPClient(v.httpClient),
		api.WithAuthorizeURL(v.authorizeURL),
		api.WithTokenURL(v.tokenURL),
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithLogger(logger),
	)
	return v
}

// Start stores the app credentials and loads the cached session for appID.
// It returns true iff a cached session was found and is still valid; an
// expired cached session is loaded (so it can be refreshed) but reported as
// false. Empty appID or appSecret fail with ErrInvalidCredentials.
func (v *Venmo) Start(appID, appSecret, appName string) (bool, error) {
	creds := oauthmodel.AppCredentials{AppID: appID, AppSecret: appSecret, AppName: appName}
	if err := creds.Validate(); err != nil {
		return false, errors.Wrap(sdkerrors.ErrInvalidCredentials, "[Start] "+err.Error())
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.creds != nil {
		return false, errors.Wrap(sdkerrors.ErrInvalidCredentials, "[Start] already started")
	}
	if v.cache == nil {
		v.cache = v.defaultCache(creds)
		v.ownsCache = true
	}
	v.creds = &creds

	cached, err := v.cache.Load(appID)
	if err != nil {
		if !sdkerrors.Is(err, session.ErrNotFound) {
			v.logger.Warn().Err(err).Str("app_id", appID).Msg("failed to load cached session")
		}
		v.session = nil
		return false, nil
	}
	v.session = cached
	valid := cached.IsValid(v.nowTime())
	v.logger.Info().Str("app_id", appID).Bool("valid", valid).Msg("loaded cached session")
	return valid, nil
}

func (v *Venmo) defaultCache(creds oauthmodel.AppCredentials) session.Cache {
	var opts []filecache.Option
	if v.config.GetEncryptCache() {
		opts = append(opts, filecache.WithSealer(session.NewSealer(creds.AppSecret)))
	}
	c, err := filecache.New(v.cacheDir, opts...)
	if err != nil {
		v.logger.Warn().Err(err).Msg("file cache unavailable, sessions will not persist")
		return session.NewInMemoryCache()
	}
	return c
}

// Reset returns the instance to its pre-Start state. Outstanding requests
// complete with context.Canceled.
func (v *Venmo) Reset() {
	v.mu.Lock()
	v.creds = nil
	v.session = nil
	if v.ownsCache {
		v.cache = nil
		v.ownsCache = false
	}
	v.mu.Unlock()

	if req, ok := v.oauth.Clear(); ok {
		req.result <- OAuthResult{Err: context.Canceled}
	}
	if req, ok := v.txns.Clear(); ok {
		req.result <- TransactionResult{Method: transaction.MethodAppSwitch, Err: context.Canceled}
	}
}

// Credentials returns the started app's credentials.
func (v *Venmo) Credentials() (AppCredentials, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.creds == nil {
		return AppCredentials{}, false
	}
	return *v.creds, true
}

// IsAppInstalled reports whether the provider's app can be switched to.
func (v *Venmo) IsAppInstalled() bool {
	return v.appSwitch.IsAppInstalled()
}

func (v *Venmo) DefaultTransactionMethod() transaction.Method {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.defaultMethod
}

func (v *Venmo) SetDefaultTransactionMethod(m transaction.Method) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.defaultMethod = m
}

// CallbackScheme is the scheme the host application must register.
func (v *Venmo) CallbackScheme() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.callbackSchemeLocked()
}

func (v *Venmo) callbackSchemeLocked() string {
	if v.callbackScheme != "" {
		return v.callbackScheme
	}
	if v.creds == nil {
		return ""
	}
	return "venmo" + v.creds.AppID
}

// AwaitingCallback reports whether an OAuth request or an app switch
// transaction is waiting for HandleCallbackURL.
func (v *Venmo) AwaitingCallback() bool {
	return v.oauth.Status() == authflow.AwaitingCallback || v.txns.Status() == authflow.AwaitingCallback
}
