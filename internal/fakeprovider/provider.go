// Package fakeprovider is an in-process stand-in for the payment provider:
// its REST API (served with chi) and its native app's URL handling. Tests and
// the CLI's sandbox mode run against it.
package fakeprovider

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-venmo-sdk/oauthmodel"
	"github.com/jrsteele09/go-venmo-sdk/session"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/rs/zerolog"
)

// DefaultTokenLifetime mirrors the provider's ~60 day access tokens.
const DefaultTokenLifetime = 60 * 24 * time.Hour

type grant struct {
	expiresAt   time.Time
	permissions string
}

// Provider holds issued tokens and recorded payments.
type Provider struct {
	AppID     string
	AppSecret string
	User      session.User

	mu            sync.Mutex
	accessTokens  map[string]grant
	refreshTokens map[string]string // refresh token -> permissions
	codes         map[string]string // code -> permissions
	payments      []url.Values
	lifetime      time.Duration
	nowTime       func() time.Time
	logger        zerolog.Logger
}

type Option func(*Provider)

func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func WithTokenLifetime(d time.Duration) Option {
	return func(p *Provider) {
		p.lifetime = d
	}
}

func New(appID, appSecret string, user session.User, opts ...Option) *Provider {
	p := &Provider{
		AppID:         appID,
		AppSecret:     appSecret,
		User:          user,
		accessTokens:  make(map[string]grant),
		refreshTokens: make(map[string]string),
		codes:         make(map[string]string),
		lifetime:      DefaultTokenLifetime,
		nowTime:       time.Now,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Router serves the REST API rooted at "/".
func (p *Provider) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(p.recoverMiddleware, p.loggingMiddleware)
	r.Post("/oauth/access_token", p.handleToken)
	r.Group(func(r chi.Router) {
		r.Use(p.requireBearer)
		r.Get("/me", p.handleMe)
		r.Post("/payments", p.handleCreatePayment)
		r.Get("/payments/{id}", p.handleGetPayment)
	})
	return r
}

// IssueToken mints a token pair as if the user had authorized permissions.
func (p *Provider) IssueToken(permissions string) (accessToken, refreshToken string, expiresIn int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueLocked(permissions)
}

func (p *Provider) issueLocked(permissions string) (string, string, int64) {
	access := "at-" + uuid.New().String()
	refresh := "rt-" + uuid.New().String()
	p.accessTokens[access] = grant{expiresAt: p.nowTime().Add(p.lifetime), permissions: permissions}
	p.refreshTokens[refresh] = permissions
	return access, refresh, int64(p.lifetime / time.Second)
}

// ExpireToken moves an access token's expiry into the past.
func (p *Provider) ExpireToken(accessToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.accessTokens[accessToken]; ok {
		g.expiresAt = p.nowTime().Add(-time.Second)
		p.accessTokens[accessToken] = g
	}
}

// Payments returns the form bodies of every POST /payments received.
func (p *Provider) Payments() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.payments...)
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.PostForm.Get("client_id") != p.AppID || r.PostForm.Get("client_secret") != p.AppSecret {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var permissions string
	switch oauthmodel.GrantType(r.PostForm.Get("grant_type")) {
	case oauthmodel.RefreshTokenGrant:
		perms, ok := p.refreshTokens[r.PostForm.Get("refresh_token")]
		if !ok {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		delete(p.refreshTokens, r.PostForm.Get("refresh_token"))
		permissions = perms
	case oauthmodel.AuthorizationCodeGrant:
		perms, ok := p.codes[r.PostForm.Get("code")]
		if !ok {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		delete(p.codes, r.PostForm.Get("code"))
		permissions = perms
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	access, refresh, expiresIn := p.issueLocked(permissions)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    expiresIn,
		"token_type":    "bearer",
		"permissions":   permissions,
	})
}

func (p *Provider) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		p.mu.Lock()
		g, ok := p.accessTokens[token]
		now := p.nowTime()
		p.mu.Unlock()
		if !ok {
			writeAPIError(w, http.StatusUnauthorized, 261, "Invalid access token.")
			return
		}
		if now.After(g.expiresAt) {
			writeAPIError(w, http.StatusUnauthorized, 262, "Access token expired.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Provider) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"user": p.User},
	})
}

func (p *Provider) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIError(w, http.StatusBadRequest, 400, "Malformed form body.")
		return
	}
	form := r.PostForm
	amount, err := transaction.ParseAmount(form.Get("amount"))
	if err != nil || amount == 0 {
		writeAPIError(w, http.StatusBadRequest, 2901, "Invalid amount.")
		return
	}

	p.mu.Lock()
	p.payments = append(p.payments, form)
	p.mu.Unlock()

	txn := p.buildTransaction(form)
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"payment": txn},
	})
}

func (p *Provider) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{
		"data": transaction.Transaction{ID: id, Status: transaction.StatusSettled, DateCreated: p.nowTime().UTC()},
	})
}

func (p *Provider) buildTransaction(form url.Values) transaction.Transaction {
	amount, _ := transaction.ParseAmount(form.Get("amount"))
	txnType := transaction.TypePay
	if amount < 0 {
		txnType = transaction.TypeCharge
		amount = -amount
	}
	target := &transaction.Target{}
	switch {
	case form.Get("email") != "":
		target.Type, target.Email = transaction.RecipientEmail, form.Get("email")
	case form.Get("phone") != "":
		target.Type, target.Phone = transaction.RecipientPhone, form.Get("phone")
	default:
		target.Type = transaction.RecipientUserID
		target.User = &session.User{ID: form.Get("user_id")}
	}
	status := transaction.StatusSettled
	if txnType == transaction.TypeCharge {
		status = transaction.StatusPending
	}
	actor := p.User
	return transaction.Transaction{
		ID:          uuid.New().String(),
		Status:      status,
		Type:        txnType,
		Amount:      amount,
		Note:        form.Get("note"),
		Audience:    transaction.Audience(form.Get("audience")),
		Target:      target,
		Actor:       &actor,
		DateCreated: p.nowTime().UTC().Truncate(time.Second),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": message, "code": code},
	})
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"error": code})
}
