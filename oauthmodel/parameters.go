package oauthmodel

import (
	"net/url"
	"strings"
)

// ClientName identifies this SDK to the provider in outbound URLs.
const ClientName = "go"

// AuthorizationParameters holds the fields this SDK populates on the
// provider's authorize URL. The full key set is owned by the provider; these
// are the ones the SDK must supply.
type AuthorizationParameters struct {
	// AppID identifies the application requesting authorization.
	// Required: Yes
	// Example: "1234"
	AppID string

	// AppName is shown by the native app as "via <AppName>".
	// Required: No (defaults to AppID)
	AppName string

	// Permissions are the scopes being requested.
	// Required: Yes
	// Example: make_payments,access_profile
	Permissions Permissions

	// RedirectURI is the host application's callback URL, the one the native
	// app or browser opens once the user has decided.
	// Required: Yes
	// Example: "venmo1234://oauth"
	RedirectURI string

	// ResponseType selects token hand-back (app switch) or code exchange (browser).
	// Required: No (defaults to "token")
	ResponseType ResponseType

	// State correlates the callback with the pending request.
	// Required: Recommended
	// Security: the SDK rejects callbacks whose state does not match
	State string

	// SDKVersion is reported to the provider for diagnostics.
	SDKVersion string
}

// Validate checks the parameters before they are encoded into a launch URL.
func (p *AuthorizationParameters) Validate() error {
	if strings.TrimSpace(p.AppID) == "" {
		return ErrMissingAppID
	}
	if strings.TrimSpace(p.RedirectURI) == "" {
		return ErrMissingRedirectURI
	}
	if err := p.Permissions.Validate(); err != nil {
		return err
	}
	if !responseTypeValid(p.ResponseType) {
		return ErrInvalidResponseType
	}
	return nil
}

// Query encodes the parameters. url.Values escapes every free text field so
// an app name or redirect cannot inject extra keys.
func (p *AuthorizationParameters) Query() url.Values {
	q := url.Values{}
	q.Set(ParamAppID, p.AppID)
	appName := p.AppName
	if appName == "" {
		appName = p.AppID
	}
	q.Set(ParamAppName, appName)
	q.Set(ParamPermissions, p.Permissions.CSV())
	q.Set(ParamRedirectURI, p.RedirectURI)
	responseType := p.ResponseType
	if responseType == "" {
		responseType = TokenResponseType
	}
	q.Set(ParamResponseType, string(responseType))
	if p.State != "" {
		q.Set(ParamState, p.State)
	}
	if p.SDKVersion != "" {
		q.Set(ParamSDKVersion, p.SDKVersion)
	}
	q.Set(ParamClient, ClientName)
	return q
}

func responseTypeValid(responseType ResponseType) bool {
	switch responseType {
	case "", TokenResponseType, CodeResponseType:
		return true
	}
	return false
}
