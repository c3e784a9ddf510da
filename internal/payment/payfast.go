package payment

import (
	"fmt"
	"net/url"
)

const payfastProcessURL = "https://www.payfast.co.za/eng/process"

// PayFastConfig identifies the merchant's hosted pay-now page. PayFast
// collects the card details itself; we only build the redirect.
type PayFastConfig struct {
	Receiver  string
	ItemName  string
	ReturnURL string
	CancelURL string
}

type PayFast struct {
	cfg        PayFastConfig
	processURL string
}

func NewPayFast(cfg PayFastConfig) *PayFast {
	return &PayFast{cfg: cfg, processURL: payfastProcessURL}
}

// Configured returns true if a receiver ID is set.
func (p *PayFast) Configured() bool {
	return p.cfg.Receiver != ""
}

// PayNowURL builds the hosted checkout redirect for the given amount in
// rand.
func (p *PayFast) PayNowURL(amountRand string) (string, error) {
	if !p.Configured() {
		return "", fmt.Errorf("payfast not configured: missing receiver")
	}

	q := url.Values{}
	q.Set("cmd", "_paynow")
	q.Set("receiver", p.cfg.Receiver)
	q.Set("item_name", p.cfg.ItemName)
	q.Set("amount", amountRand)
	if p.cfg.ReturnURL != "" {
		q.Set("return_url", p.cfg.ReturnURL)
	}
	if p.cfg.CancelURL != "" {
		q.Set("cancel_url", p.cfg.CancelURL)
	}
	return p.processURL + "?" + q.Encode(), nil
}
