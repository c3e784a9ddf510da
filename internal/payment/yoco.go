// Package payment wraps the two South African payment providers the
// product sells through. Both are opaque boundaries: a charge either
// succeeds or it doesn't, and the outcome never mutates the license or
// account model. Keys are issued manually after payment reconciliation.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const yocoChargeURL = "https://online.yoco.com/v1/charges/"

// YocoClient charges card tokens produced by the Yoco popup on the
// payment page. The secret key stays server-side.
type YocoClient struct {
	secretKey  string
	chargeURL  string
	httpClient *http.Client
}

type YocoOption func(*YocoClient)

func WithYocoHTTPClient(c *http.Client) YocoOption {
	return func(y *YocoClient) {
		y.httpClient = c
	}
}

func WithYocoChargeURL(url string) YocoOption {
	return func(y *YocoClient) {
		y.chargeURL = url
	}
}

func NewYocoClient(secretKey string, opts ...YocoOption) *YocoClient {
	y := &YocoClient{
		secretKey:  secretKey,
		chargeURL:  yocoChargeURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Configured returns true if the secret key is set.
func (y *YocoClient) Configured() bool {
	return y.secretKey != ""
}

type yocoChargeRequest struct {
	Token       string       `json:"token"`
	AmountCents int          `json:"amountInCents"`
	Currency    string       `json:"currency"`
	Metadata    yocoMetadata `json:"metadata"`
}

type yocoMetadata struct {
	ProductName   string `json:"productName"`
	CustomerEmail string `json:"customerEmail"`
}

type yocoChargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChargeResult is the opaque outcome handed back to the checkout handler.
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Charge submits a tokenized card payment. A declined charge is a result,
// not an error; errors mean the provider could not be reached or answered
// garbage.
func (y *YocoClient) Charge(ctx context.Context, token string, amountCents int, currency, product, customerEmail string) (*ChargeResult, error) {
	if !y.Configured() {
		return nil, fmt.Errorf("yoco client not configured: missing secret key")
	}

	body, err := json.Marshal(yocoChargeRequest{
		Token:       token,
		AmountCents: amountCents,
		Currency:    currency,
		Metadata: yocoMetadata{
			ProductName:   product,
			CustomerEmail: customerEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal charge: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.chargeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create charge request: %w", err)
	}
	req.Header.Set("X-Auth-Secret-Key", y.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	var cr yocoChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}

	if cr.Error != nil {
		return &ChargeResult{Success: false, Status: "declined", Message: cr.Error.Message}, nil
	}
	if cr.Status != "successful" {
		return &ChargeResult{Success: false, Status: cr.Status, Message: fmt.Sprintf("payment %s", cr.Status)}, nil
	}
	return &ChargeResult{Success: true, TransactionID: cr.ID, Status: cr.Status}, nil
}
