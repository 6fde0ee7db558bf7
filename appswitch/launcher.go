package appswitch

import (
	"context"
	"net/url"
)

// Launcher is the host platform's URL opener.
type Launcher interface {
	// CanOpenURL reports whether some installed app handles u's scheme.
	CanOpenURL(u *url.URL) bool

	// OpenURL hands u to the platform. It returns false when nothing handled it.
	OpenURL(ctx context.Context, u *url.URL) bool
}

// Unavailable is a Launcher for hosts that cannot open URLs at all.
type Unavailable struct{}

var _ Launcher = Unavailable{}

func (Unavailable) CanOpenURL(*url.URL) bool { return false }

func (Unavailable) OpenURL(context.Context, *url.URL) bool { return false }

// LauncherFunc adapts a function to a Launcher that can open any URL it accepts.
type LauncherFunc func(ctx context.Context, u *url.URL) bool

func (f LauncherFunc) CanOpenURL(*url.URL) bool { return true }

func (f LauncherFunc) OpenURL(ctx context.Context, u *url.URL) bool { return f(ctx, u) }
