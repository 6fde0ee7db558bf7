package transaction_test

import (
	"encoding/json"
	"testing"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
	"github.com/jrsteele09/go-venmo-sdk/transaction"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	valid := transaction.Request{
		RecipientHandle:  "friend@example.com",
		Type:             transaction.TypePay,
		AmountMinorUnits: 100,
		Note:             "lunch",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *transaction.Request)
	}{
		{"blank recipient", func(r *transaction.Request) { r.RecipientHandle = " " }},
		{"unknown type", func(r *transaction.Request) { r.Type = "refund" }},
		{"zero amount", func(r *transaction.Request) { r.AmountMinorUnits = 0 }},
		{"blank note", func(r *transaction.Request) { r.Note = "" }},
		{"unknown audience", func(r *transaction.Request) { r.Audience = "world" }},
		{"unknown recipient kind", func(r *transaction.Request) { r.Recipient = "handle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			require.ErrorIs(t, r.Validate(), sdkerrors.ErrInvalidTransaction)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[uint64]string{
		1:      "0.01",
		99:     "0.99",
		100:    "1.00",
		1234:   "12.34",
		100005: "1000.05",
	}
	for minor, want := range tests {
		require.Equal(t, want, transaction.FormatAmount(minor))
	}

	charge := transaction.Request{Type: transaction.TypeCharge, AmountMinorUnits: 1250}
	require.Equal(t, "-12.50", charge.SignedAmount())
	pay := transaction.Request{Type: transaction.TypePay, AmountMinorUnits: 1250}
	require.Equal(t, "12.50", pay.SignedAmount())
}

func TestRequest_RecipientKind(t *testing.T) {
	tests := []struct {
		handle string
		want   transaction.RecipientKind
	}{
		{"friend@example.com", transaction.RecipientEmail},
		{"+1 (555) 123-4567", transaction.RecipientPhone},
		{"5551234567", transaction.RecipientPhone},
		{"555-1234", transaction.RecipientPhone},
		{"+445551234567", transaction.RecipientPhone},
		{"jdoe", transaction.RecipientUserID},
		{"1088551785594880949", transaction.RecipientUserID},
		{"12345678", transaction.RecipientUserID},
		{"+1 555 123 4567 8901 234", transaction.RecipientUserID},
	}
	for _, tt := range tests {
		r := transaction.Request{RecipientHandle: tt.handle}
		require.Equal(t, tt.want, r.RecipientKind(), tt.handle)
	}

	t.Run("explicit kind wins", func(t *testing.T) {
		r := transaction.Request{RecipientHandle: "5551234567", Recipient: transaction.RecipientUserID}
		require.Equal(t, transaction.RecipientUserID, r.RecipientKind())
	})
}

func TestRequest_AudienceOrDefault(t *testing.T) {
	r := transaction.Request{}
	require.Equal(t, transaction.AudiencePrivate, r.AudienceOrDefault())
	r.Audience = transaction.AudiencePublic
	require.Equal(t, transaction.AudiencePublic, r.AudienceOrDefault())
}

func TestMethod_String(t *testing.T) {
	require.Equal(t, "app_switch", transaction.MethodAppSwitch.String())
	require.Equal(t, "api", transaction.MethodAPI.String())
	require.Equal(t, "method(7)", transaction.Method(7).String())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want transaction.Amount
	}{
		{"12.5", 1250},
		{"12.50", 1250},
		{"0.07", 7},
		{"-7.05", -705},
		{"3", 300},
		{"1.100", 110},
	}
	for _, tt := range tests {
		got, err := transaction.ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "1.005", ".5", "1e3", "99999999999999999999"} {
		_, err := transaction.ParseAmount(bad)
		require.ErrorIs(t, err, sdkerrors.ErrInvalidTransaction, bad)
	}

	require.Equal(t, "-7.05", transaction.Amount(-705).String())
}

func TestAmount_JSON(t *testing.T) {
	var txn transaction.Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","amount":0.1}`), &txn))
	require.Equal(t, transaction.Amount(10), txn.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","amount":"12.34"}`), &txn))
	require.Equal(t, transaction.Amount(1234), txn.Amount)

	out, err := json.Marshal(transaction.Transaction{ID: "t2", Amount: 1250})
	require.NoError(t, err)
	require.Contains(t, string(out), `"amount":12.50`)
}
