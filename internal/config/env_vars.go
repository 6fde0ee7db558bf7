package config

import (
	"os"
	"strings"
)

const (
	apiBaseURLVar   = "VENMO_API_BASE_URL"
	authorizeURLVar = "VENMO_AUTHORIZE_URL"
	tokenURLVar     = "VENMO_TOKEN_URL"
	appSchemeVar    = "VENMO_APP_SCHEME"
	cacheDirVar     = "VENMO_CACHE_DIR"
	logLevelVar     = "LOG_LEVEL"
	envVar          = "ENV"
	encryptCacheVar = "VENMO_ENCRYPT_CACHE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIBaseURL returns the REST API root, without a trailing slash.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "https://api.venmo.com/v1"), "/")
}

// GetAuthorizeURL is the browser authorization endpoint used when the app is not installed.
func (e EnvVars) GetAuthorizeURL() string {
	return GetEnv(authorizeURLVar, e.GetAPIBaseURL()+"/oauth/authorize")
}

func (e EnvVars) GetTokenURL() string {
	return GetEnv(tokenURLVar, e.GetAPIBaseURL()+"/oauth/access_token")
}

// GetAppScheme is the URL scheme registered by the provider's native app.
func (EnvVars) GetAppScheme() string {
	return GetEnv(appSchemeVar, "venmo")
}

func (EnvVars) GetCacheDir() string {
	return GetEnv(cacheDirVar, "./data")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
