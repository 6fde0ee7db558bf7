package appswitch

import (
	"errors"
	"net/url"
	"strings"
)

// ErrForeignURL marks a URL this SDK does not own. Callers leave it for the
// host application to handle.
var ErrForeignURL = errors.New("url is not an sdk callback")

// CallbackKind is the payload-type tag of a callback URL.
type CallbackKind int

const (
	CallbackOAuth CallbackKind = iota + 1
	CallbackTransaction
)

// Callback is a callback URL that carries an SDK payload.
type Callback struct {
	Kind  CallbackKind
	URL   *url.URL
	Query url.Values
}

// ParseCallback classifies raw by scheme and host. Parameters are read from
// the query, or from the fragment when the query is empty.
func ParseCallback(raw, callbackScheme string) (*Callback, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrForeignURL
	}
	if callbackScheme == "" || !strings.EqualFold(u.Scheme, callbackScheme) {
		return nil, ErrForeignURL
	}

	var kind CallbackKind
	switch strings.ToLower(u.Host) {
	case HostOAuth:
		kind = CallbackOAuth
	case HostTransaction:
		kind = CallbackTransaction
	default:
		return nil, ErrForeignURL
	}

	query := u.Query()
	if len(query) == 0 && u.Fragment != "" {
		if fragment, err := url.ParseQuery(u.Fragment); err == nil {
			query = fragment
		}
	}
	return &Callback{Kind: kind, URL: u, Query: query}, nil
}

// CallbackURL is the redirect the host registers: <scheme>://<host>.
func CallbackURL(callbackScheme, host string) string {
	return (&url.URL{Scheme: callbackScheme, Host: host}).String()
}
