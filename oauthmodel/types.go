package oauthmodel

// ResponseType represents the OAuth 2.0 response type requested at the authorize endpoint.
type ResponseType string

const (
	// TokenResponseType asks the native app to hand the access token straight
	// back on the callback URL.
	// Used in: app switch
	// Example: venmo://oauth/authorize?response_type=token&app_id=...
	TokenResponseType ResponseType = "token"

	// CodeResponseType returns an authorization code that the SDK exchanges at
	// the token endpoint.
	// Used in: browser flow when the native app is not installed
	// Example: https://api.venmo.com/v1/oauth/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges a browser flow code for tokens.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Access tokens can only be refreshed once they have expired.
	RefreshTokenGrant GrantType = "refresh_token"
)

// Query keys shared by the authorize URL and the callback URL.
const (
	ParamAppID            = "app_id"
	ParamAppName          = "app_name"
	ParamPermissions      = "permissions"
	ParamRedirectURI      = "redirect_uri"
	ParamResponseType     = "response_type"
	ParamState            = "state"
	ParamSDKVersion       = "sdk_version"
	ParamClient           = "client"
	ParamAccessToken      = "access_token"
	ParamRefreshToken     = "refresh_token"
	ParamTokenType        = "token_type"
	ParamExpiresIn        = "expires_in"
	ParamExpiresAt        = "expires_at"
	ParamCode             = "code"
	ParamError            = "error"
	ParamErrorDescription = "error_description"
)
