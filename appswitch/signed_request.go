package appswitch

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
)

// ErrInvalidSignedRequest covers any signed_request that fails verification.
var ErrInvalidSignedRequest = errors.New("invalid signed request")

// SignedTransaction is the claim set of a transaction callback's
// signed_request: an HS256 token signed with the app secret.
type SignedTransaction struct {
	RequestID   string                  `json:"request_id"`
	Transaction transaction.Transaction `json:"transaction"`
	jwt.RegisteredClaims
}

// VerifySignedRequest checks the signature with appSecret and the token
// lifetime against now, and returns the claims.
func VerifySignedRequest(signed, appSecret string, now time.Time) (*SignedTransaction, error) {
	if signed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSignedRequest)
	}
	claims := &SignedTransaction{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(appSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignedRequest, err)
	}
	if !token.Valid || claims.RequestID == "" {
		return nil, ErrInvalidSignedRequest
	}
	return claims, nil
}

// SignTransaction produces a signed_request for txn. The native app does this
// on the provider's side; the SDK uses it in its fake provider and tests.
func SignTransaction(requestID string, txn transaction.Transaction, appSecret string, issuedAt time.Time) (string, error) {
	claims := &SignedTransaction{
		RequestID:   requestID,
		Transaction: txn,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(10 * time.Minute)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(appSecret))
}
