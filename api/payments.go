package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-venmo-sdk/transaction"
)

const paymentsPath = "/payments"

// CreateTransaction posts req to /payments. Charges are sent as negative amounts.
func (c *Client) CreateTransaction(ctx context.Context, accessToken string, req transaction.Request) (*transaction.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set(string(req.RecipientKind()), req.RecipientHandle)
	params.Set("note", req.Note)
	params.Set("amount", req.SignedAmount())
	params.Set("audience", string(req.AudienceOrDefault()))

	data, err := c.Send(ctx, http.MethodPost, paymentsPath, params, accessToken)
	if err != nil {
		return nil, err
	}

	var body struct {
		Payment *transaction.Transaction `json:"payment"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Payment == nil {
		return nil, &TransportError{Message: "response carries no payment", Cause: err}
	}
	return body.Payment, nil
}

// Transaction fetches a single payment by id.
func (c *Client) Transaction(ctx context.Context, accessToken, id string) (*transaction.Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("[Transaction] id is required")
	}
	data, err := c.Send(ctx, http.MethodGet, paymentsPath+"/"+url.PathEscape(id), nil, accessToken)
	if err != nil {
		return nil, err
	}
	var txn transaction.Transaction
	if err := json.Unmarshal(data, &txn); err != nil {
		return nil, &TransportError{Message: "failed to decode payment", Cause: err}
	}
	return &txn, nil
}
