package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http/httptest"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/internal/config"
	"github.com/jrsteele09/go-venmo-sdk/internal/fakeprovider"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/sdk"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/jrsteele09/go-venmo-sdk/session/sqlitecache"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	appID       string
	appSecret   string
	appName     string
	scheme      string
	permissions string
	sandbox     bool
	sqlitePath  string
	logout      bool

	recipient string
	amount    uint64
	note      string
	charge    bool
	method    string
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("venmo failed")
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.appID, "app-id", os.Getenv("VENMO_APP_ID"), "application id")
	flag.StringVar(&o.appSecret, "secret", os.Getenv("VENMO_APP_SECRET"), "application secret")
	flag.StringVar(&o.appName, "name", "Go Venmo CLI", "application display name")
	flag.StringVar(&o.scheme, "scheme", "", "callback url scheme (default venmo<app-id>)")
	flag.StringVar(&o.permissions, "perms", "access_profile,make_payments", "comma separated permissions")
	flag.BoolVar(&o.sandbox, "sandbox", false, "run against an in-process fake provider")
	flag.StringVar(&o.sqlitePath, "sqlite", "", "persist sessions in this sqlite database instead of the file cache")
	flag.BoolVar(&o.logout, "logout", false, "forget the cached session and exit")
	flag.StringVar(&o.recipient, "to", "", "recipient email, phone or user id; empty to only authorize")
	flag.Uint64Var(&o.amount, "amount", 0, "amount in cents")
	flag.StringVar(&o.note, "note", "", "transaction note")
	flag.BoolVar(&o.charge, "charge", false, "charge the recipient instead of paying")
	flag.StringVar(&o.method, "method", "api", "transaction method: api or app_switch")
	flag.Parse()
	return o
}

func run(o options) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname("venmo")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.sandbox {
		if o.appID == "" {
			o.appID = "sandbox-app"
		}
		if o.appSecret == "" {
			o.appSecret = "sandbox-secret"
		}
	}

	var sdkOpts []sdk.Option
	if o.scheme != "" {
		sdkOpts = append(sdkOpts, sdk.WithCallbackScheme(o.scheme))
	}
	if o.sqlitePath != "" {
		var sealerOpts []sqlitecache.Option
		if c.GetEncryptCache() {
			sealerOpts = append(sealerOpts, sqlitecache.WithSealer(session.NewSealer(o.appSecret)))
		}
		cache, err := sqlitecache.Open(o.sqlitePath, sealerOpts...)
		if err != nil {
			return fmt.Errorf("sqlitecache.Open: %w", err)
		}
		defer cache.Close()
		sdkOpts = append(sdkOpts, sdk.WithSessionCache(cache))
	}

	var v *sdk.Venmo
	if o.sandbox {
		provider := fakeprovider.New(o.appID, o.appSecret, session.User{
			ID:          "sandbox-user",
			Username:    "sandbox",
			DisplayName: "Sandbox User",
		}, fakeprovider.WithLogger(log.Logger))
		srv := httptest.NewServer(provider.Router())
		defer srv.Close()
		log.Info().Str("url", srv.URL).Msg("sandbox provider listening")

		sdkOpts = append(sdkOpts,
			sdk.WithAPIBaseURL(srv.URL),
			sdk.WithLauncher(sandboxLauncher(provider, &v)),
		)
	} else {
		sdkOpts = append(sdkOpts, sdk.WithLauncher(printLauncher{}))
	}
	v = sdk.New(sdkOpts...)

	cached, err := v.Start(o.appID, o.appSecret, o.appName)
	if err != nil {
		return err
	}
	if o.logout {
		return v.Logout()
	}

	if !o.sandbox {
		go forwardCallbacks(ctx, v)
	}

	if err := authorize(ctx, v, cached, o.permissions); err != nil {
		return err
	}
	if user, err := v.FetchCurrentUser(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load profile")
	} else {
		log.Info().Str("user", user.DisplayName).Str("id", user.ID).Msg("authorized user")
	}

	if o.recipient == "" {
		return nil
	}
	return send(ctx, v, o)
}

func authorize(ctx context.Context, v *sdk.Venmo, cached bool, permissions string) error {
	if cached {
		log.Info().Msg("using cached session")
		return nil
	}
	if v.ShouldRefreshToken() {
		_, err := v.RefreshToken(ctx)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Msg("refresh failed, requesting authorization")
	}

	select {
	case res := <-v.RequestPermissions(ctx, oauthmodel.ParsePermissions(permissions)...):
		if res.Err != nil {
			return res.Err
		}
		log.Info().Time("expires_at", res.Session.ExpiresAt).Strs("permissions", res.Session.Permissions.Strings()).Msg("authorized")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func send(ctx context.Context, v *sdk.Venmo, o options) error {
	req := transaction.Request{
		RecipientHandle:  o.recipient,
		Type:             transaction.TypePay,
		AmountMinorUnits: o.amount,
		Note:             o.note,
	}
	if o.charge {
		req.Type = transaction.TypeCharge
	}
	method := transaction.MethodAPI
	if o.method == transaction.MethodAppSwitch.String() {
		method = transaction.MethodAppSwitch
	}

	select {
	case res := <-v.SendTransaction(ctx, req, sdk.WithMethod(method)):
		if res.Err != nil {
			return res.Err
		}
		log.Info().
			Str("id", res.Transaction.ID).
			Str("status", string(res.Transaction.Status)).
			Str("method", res.Method.String()).
			Stringer("amount", res.Transaction.Amount).
			Msg("transaction sent")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// printLauncher stands in for the platform: it prints every URL and lets the
// user paste the resulting callback on stdin.
type printLauncher struct{}

func (printLauncher) CanOpenURL(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

func (printLauncher) OpenURL(_ context.Context, u *url.URL) bool {
	fmt.Printf("\nOpen this URL, then paste the callback URL here:\n  %s\n\n", u)
	return true
}

func forwardCallbacks(ctx context.Context, v *sdk.Venmo) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !v.HandleCallbackURL(ctx, line) {
			log.Warn().Str("url", line).Msg("not a callback for a pending request")
		}
	}
}

// sandboxLauncher answers every launch with the fake provider's approval.
func sandboxLauncher(p *fakeprovider.Provider, v **sdk.Venmo) appswitch.Launcher {
	return appswitch.LauncherFunc(func(ctx context.Context, u *url.URL) bool {
		callback, err := p.Respond(u)
		if err != nil {
			log.Error().Err(err).Msg("sandbox provider rejected launch")
			return false
		}
		go func() {
			if !(*v).HandleCallbackURL(context.WithoutCancel(ctx), callback) {
				log.Warn().Str("url", callback).Msg("sandbox callback was not handled")
			}
		}()
		return true
	})
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
