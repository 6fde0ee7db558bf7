package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	OAuthConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetAppScheme() string
	GetCacheDir() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Security
}

// New loads a .env file when one is present and returns the env backed config.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
