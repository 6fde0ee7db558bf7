package oauthmodel

import "errors"

var (
	ErrMissingAppID        = errors.New("app id is required")
	ErrMissingRedirectURI  = errors.New("redirect uri is required")
	ErrNoPermissions       = errors.New("at least one permission is required")
	ErrUnknownPermission   = errors.New("unknown permission")
	ErrMissingAccessToken  = errors.New("callback carries no access token")
	ErrMissingExpiry       = errors.New("callback carries no expiry")
	ErrInvalidExpiry       = errors.New("invalid expiry value")
	ErrInvalidResponseType = errors.New("unsupported response type")
)
