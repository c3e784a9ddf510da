package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/appauth"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/middleware"
)

// AppTokenHandler links the mobile app to a dashboard account by minting a
// signed token the app stores locally.
type AppTokenHandler struct {
	appauth   *appauth.Manager
	directory *directory.Service
}

func NewAppTokenHandler(m *appauth.Manager, d *directory.Service) *AppTokenHandler {
	return &AppTokenHandler{appauth: m, directory: d}
}

type appTokenRequest struct {
	LicenseKey string `json:"license_key"`
}

func (h *AppTokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if h.appauth == nil || !h.appauth.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "app linking not configured"})
		return
	}

	var req appTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

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

	token, err := h.appauth.Issue(account.ID, account.MentorID, req.LicenseKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
