package paystack

import "time"

// InitializeParams carries the inputs for creating a hosted checkout session.
type InitializeParams struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]any
}

type initializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Authorization is the hosted checkout handle returned by Initialize.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the verification payload for a gateway charge.
type Transaction struct {
	ID          int64          `json:"id"`
	Status      string         `json:"status"`
	Reference   string         `json:"reference"`
	AmountMinor int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Channel     string         `json:"channel"`
	PaidAt      *time.Time     `json:"paid_at"`
	GatewayResp string         `json:"gateway_response"`
	Customer    Customer       `json:"customer"`
	Metadata    map[string]any `json:"metadata"`
}

// Customer identifies the paying customer on a transaction.
type Customer struct {
	Email string `json:"email"`
}

// Succeeded reports whether the gateway settled the charge.
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Status == "success"
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// WebhookEvent is the parsed body of a gateway callback.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}
