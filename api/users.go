package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-venmo-sdk/session"
)

// CurrentUser fetches the profile of the user who owns accessToken.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	data, err := c.Send(ctx, http.MethodGet, "/me", nil, accessToken)
	if err != nil {
		return nil, err
	}
	var body struct {
		User *session.User `json:"user"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.User == nil {
		return nil, &TransportError{Message: "response carries no user", Cause: err}
	}
	return body.User, nil
}
