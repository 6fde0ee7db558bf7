// Package api calls the provider's REST API on behalf of an authorized user.
//
// Every call is a single attempt. Transport failures and non-2xx responses
// come back as *TransportError, which matches ErrTransport under errors.Is.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

// Client is the API dispatcher.
type Client struct {
	baseURL      string
	authorizeURL string
	tokenURL     string
	httpClient   *http.Client
	timeout      time.Duration
	logger       zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient sets the base client. Its transport is wrapped to attach
// bearer tokens.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithAuthorizeURL(u string) ClientOption {
	return func(c *Client) {
		c.authorizeURL = u
	}
}

func WithTokenURL(u string) ClientOption {
	return func(c *Client) {
		c.tokenURL = u
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a dispatcher rooted at baseURL, e.g. https://api.venmo.com/v1.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL:      baseURL,
		authorizeURL: baseURL + "/oauth/authorize",
		tokenURL:     baseURL + "/oauth/access_token",
		httpClient:   &http.Client{},
		timeout:      defaultTimeout,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *providerError  `json:"error"`
}

type providerError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Send performs one authenticated request and returns the response's data
// member. GET params go in the query string, anything else is form encoded.
func (c *Client) Send(ctx context.Context, method, path string, params url.Values, accessToken string) (json.RawMessage, error) {
	if accessToken == "" {
		return nil, sdkerrors.ErrNoSession
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.bearerClient(ctx, accessToken).Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &TransportError{Message: fmt.Sprintf("%s %s failed", method, path), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api response")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &TransportError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Error != nil {
			te.Code = env.Error.Code
			te.Message = env.Error.Message
		}
		return nil, te
	}
	if decodeErr != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: decodeErr}
	}
	if env.Error != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	return env.Data, nil
}

// bearerClient wraps the base client so every request carries the token.
func (c *Client) bearerClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}
