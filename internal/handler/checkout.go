package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/middleware"
	"github.com/quicktradepro/quicktrade/internal/payment"
)

// Product price: R1100 in cents. There is a single purchasable product.
const defaultAmountCents = 110000

type CheckoutHandler struct {
	yoco      *payment.YocoClient
	payfast   *payment.PayFast
	directory *directory.Service
	logger    *slog.Logger
}

func NewCheckoutHandler(yoco *payment.YocoClient, payfast *payment.PayFast, d *directory.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{yoco: yoco, payfast: payfast, directory: d, logger: logger}
}

type chargeRequest struct {
	Token string `json:"token"`
}

// Charge processes a tokenized Yoco payment. A successful charge does not
// touch the license model: keys are issued manually after reconciliation.
func (h *CheckoutHandler) Charge(w http.ResponseWriter, r *http.Request) {
	if h.yoco == nil || !h.yoco.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "payments not configured"})
		return
	}

	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, apperr.ErrValidation)
		return
	}

	accountID := middleware.AccountIDFromContext(r.Context())
	account, err := h.directory.GetByID(r.Context(), accountID)
	if err != nil || account == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	result, err := h.yoco.Charge(r.Context(), req.Token, defaultAmountCents, "ZAR", "QuickTrade Pro", account.Email)
	if err != nil {
		h.logger.Error("yoco charge", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment provider unavailable"})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, result)
}

// PayFastLink returns the hosted pay-now redirect URL.
func (h *CheckoutHandler) PayFastLink(w http.ResponseWriter, r *http.Request) {
	if h.payfast == nil || !h.payfast.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "payments not configured"})
		return
	}

	amount := r.URL.Query().Get("amount")
	if amount == "" {
		amount = "60"
	}
	link, err := h.payfast.PayNowURL(amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}
