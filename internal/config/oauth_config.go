package config

import "time"

type OAuthConfig interface {
	GetDefaultTokenLifetime() time.Duration
	GetRequestTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetDefaultTokenLifetime is applied when a refresh response carries no expiry.
func (OAuth) GetDefaultTokenLifetime() time.Duration {
	return 60 * 24 * time.Hour // access tokens live ~60 days
}

func (OAuth) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}
