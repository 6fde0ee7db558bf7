package fakeprovider

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-venmo-sdk/appswitch"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
)

// Respond plays the native app (or the browser authorization page): given a
// URL the SDK launched, it approves the request and returns the callback URL
// the host application would then receive.
func (p *Provider) Respond(launched *url.URL) (string, error) {
	q := launched.Query()
	redirect := q.Get(oauthmodel.ParamRedirectURI)
	if redirect == "" {
		return "", fmt.Errorf("launch url carries no redirect_uri")
	}

	switch {
	case launched.Scheme == "http" || launched.Scheme == "https":
		return p.respondWeb(q, redirect)
	case launched.Host == appswitch.HostOAuth:
		return p.respondOAuth(q, redirect)
	case launched.Host == appswitch.HostPayCharge:
		return p.respondPayCharge(q, redirect)
	}
	return "", fmt.Errorf("unsupported launch url %s://%s", launched.Scheme, launched.Host)
}

// Deny returns the callback for a user who declined the request.
func (p *Provider) Deny(launched *url.URL) (string, error) {
	q := launched.Query()
	redirect := q.Get(oauthmodel.ParamRedirectURI)
	if redirect == "" {
		return "", fmt.Errorf("launch url carries no redirect_uri")
	}
	cb := url.Values{}
	cb.Set(oauthmodel.ParamError, "access_denied")
	cb.Set(oauthmodel.ParamErrorDescription, "The user denied the request.")
	if state := q.Get(oauthmodel.ParamState); state != "" {
		cb.Set(oauthmodel.ParamState, state)
	}
	if requestID := q.Get(appswitch.ParamRequestID); requestID != "" {
		cb.Set(appswitch.ParamRequestID, requestID)
	}
	return withQuery(redirect, cb), nil
}

func (p *Provider) respondOAuth(q url.Values, redirect string) (string, error) {
	if q.Get(oauthmodel.ParamAppID) != p.AppID {
		return "", fmt.Errorf("unknown app id %q", q.Get(oauthmodel.ParamAppID))
	}
	access, refresh, expiresIn := p.IssueToken(q.Get(oauthmodel.ParamPermissions))
	cb := url.Values{}
	cb.Set(oauthmodel.ParamAccessToken, access)
	cb.Set(oauthmodel.ParamRefreshToken, refresh)
	cb.Set(oauthmodel.ParamExpiresIn, strconv.FormatInt(expiresIn, 10))
	cb.Set(oauthmodel.ParamPermissions, q.Get(oauthmodel.ParamPermissions))
	if state := q.Get(oauthmodel.ParamState); state != "" {
		cb.Set(oauthmodel.ParamState, state)
	}
	return withQuery(redirect, cb), nil
}

func (p *Provider) respondWeb(q url.Values, redirect string) (string, error) {
	if q.Get("client_id") != p.AppID {
		return "", fmt.Errorf("unknown client id %q", q.Get("client_id"))
	}
	code := "code-" + uuid.New().String()
	p.mu.Lock()
	p.codes[code] = strings.ReplaceAll(q.Get("scope"), " ", ",")
	p.mu.Unlock()

	cb := url.Values{}
	cb.Set(oauthmodel.ParamCode, code)
	cb.Set(oauthmodel.ParamState, q.Get(oauthmodel.ParamState))
	return withQuery(redirect, cb), nil
}

func (p *Provider) respondPayCharge(q url.Values, redirect string) (string, error) {
	if q.Get(oauthmodel.ParamAppID) != p.AppID {
		return "", fmt.Errorf("unknown app id %q", q.Get(oauthmodel.ParamAppID))
	}
	amount, err := transaction.ParseAmount(q.Get(appswitch.ParamAmount))
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	form := url.Values{}
	form.Set("note", q.Get(appswitch.ParamNote))
	form.Set("audience", string(transaction.AudienceFriends))
	handle := q.Get(appswitch.ParamRecipients)
	req := transaction.Request{RecipientHandle: handle}
	form.Set(string(req.RecipientKind()), handle)
	if transaction.Type(q.Get(appswitch.ParamTxn)) == transaction.TypeCharge {
		amount = -amount
	}
	form.Set("amount", amount.String())

	requestID := q.Get(appswitch.ParamRequestID)
	signed, err := appswitch.SignTransaction(requestID, p.buildTransaction(form), p.AppSecret, p.nowTime())
	if err != nil {
		return "", err
	}
	cb := url.Values{}
	cb.Set(appswitch.ParamRequestID, requestID)
	cb.Set(appswitch.ParamSignedRequest, signed)
	return withQuery(redirect, cb), nil
}

func withQuery(base string, q url.Values) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
