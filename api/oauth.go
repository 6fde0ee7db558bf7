package api

import (
	"context"
	"time"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"golang.org/x/oauth2"
)

// OAuthConfig describes the app to the provider's OAuth endpoints.
func (c *Client) OAuthConfig(creds oauthmodel.AppCredentials, redirectURI string, perms oauthmodel.Permissions) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.AppID,
		ClientSecret: creds.AppSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.authorizeURL,
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURI,
		Scopes:      perms.Strings(),
	}
}

// AuthCodeURL is the browser authorization URL used when the native app is
// not installed.
func (c *Client) AuthCodeURL(creds oauthmodel.AppCredentials, redirectURI string, perms oauthmodel.Permissions, state string) string {
	return c.OAuthConfig(creds, redirectURI, perms).AuthCodeURL(state,
		oauth2.SetAuthURLParam(oauthmodel.ParamAppName, creds.DisplayName()))
}

// Exchange trades a browser flow authorization code for a token.
func (c *Client) Exchange(ctx context.Context, creds oauthmodel.AppCredentials, redirectURI, code string) (*oauth2.Token, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	tok, err := c.OAuthConfig(creds, redirectURI, nil).Exchange(c.tokenContext(ctx), code)
	if err != nil {
		return nil, tokenError("code exchange failed", err)
	}
	return tok, nil
}

// Refresh trades refreshToken for a new access token. The provider only
// refreshes tokens that have already expired.
func (c *Client) Refresh(ctx context.Context, creds oauthmodel.AppCredentials, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, sdkerrors.Wrapf(sdkerrors.ErrNoRefreshToken, "[Refresh]")
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	// An expired token with no access token forces the source to refresh.
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	tok, err := c.OAuthConfig(creds, "", nil).TokenSource(c.tokenContext(ctx), expired).Token()
	if err != nil {
		return nil, tokenError("token refresh failed", err)
	}
	c.logger.Debug().Time("expiry", tok.Expiry).Msg("token refreshed")
	return tok, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func tokenError(msg string, err error) error {
	var re *oauth2.RetrieveError
	if sdkerrors.As(err, &re) {
		te := &TransportError{Message: msg, Cause: err}
		if re.Response != nil {
			te.StatusCode = re.Response.StatusCode
		}
		if re.ErrorDescription != "" {
			te.Message = re.ErrorDescription
		}
		return te
	}
	return &TransportError{Message: msg, Cause: err}
}
