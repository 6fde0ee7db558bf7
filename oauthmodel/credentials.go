package oauthmodel

import (
	"errors"
	"strings"
)

var ErrMissingAppSecret = errors.New("app secret is required")

// AppCredentials identify the host application to the provider. They are
// fixed once the SDK has started.
type AppCredentials struct {
	AppID     string
	AppSecret string
	AppName   string // shown as "via <AppName>" in the native app
}

func (c AppCredentials) Validate() error {
	if strings.TrimSpace(c.AppID) == "" {
		return ErrMissingAppID
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		return ErrMissingAppSecret
	}
	return nil
}

// DisplayName returns AppName, or AppID when no name was configured.
func (c AppCredentials) DisplayName() string {
	if c.AppName == "" {
		return c.AppID
	}
	return c.AppName
}
