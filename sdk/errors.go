package sdk

import sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"

// Errors delivered by the SDK. Test for them with errors.Is.
var (
	ErrInvalidCredentials = sdkerrors.ErrInvalidCredentials
	ErrAppNotInstalled    = sdkerrors.ErrAppNotInstalled
	ErrRequestInProgress  = sdkerrors.ErrRequestInProgress
	ErrMalformedCallback  = sdkerrors.ErrMalformedCallback
	ErrRequestDenied      = sdkerrors.ErrRequestDenied
	ErrNoSession          = sdkerrors.ErrNoSession
	ErrTokenExpired       = sdkerrors.ErrTokenExpired
	ErrNoRefreshToken     = sdkerrors.ErrNoRefreshToken
	ErrInvalidTransaction = sdkerrors.ErrInvalidTransaction
	ErrTransport          = sdkerrors.ErrTransport
)
