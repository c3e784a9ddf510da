package handler

import (
	"fmt"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/middleware"
)

// ReferralHandler derives the shareable signup link from the account's
// mentor ID. Tracking of referred signups lives outside the licensing core.
type ReferralHandler struct {
	directory *directory.Service
	baseURL   string
}

func NewReferralHandler(d *directory.Service, baseURL string) *ReferralHandler {
	return &ReferralHandler{directory: d, baseURL: baseURL}
}

func (h *ReferralHandler) Link(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	account, err := h.directory.GetByID(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if account == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mentor_id": account.MentorID,
		"url":       fmt.Sprintf("%s/signup?ref=%d", h.baseURL, account.MentorID),
	})
}
