package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quicktradepro/quicktrade/internal/licensekey"
	"github.com/quicktradepro/quicktrade/internal/licensing"
	"github.com/quicktradepro/quicktrade/internal/model"
)

// ValidateHandler serves the public license-check endpoint used by the
// EA plugin and the license-check page.
type ValidateHandler struct {
	licensing *licensing.Service
}

func NewValidateHandler(ls *licensing.Service) *ValidateHandler {
	return &ValidateHandler{licensing: ls}
}

type validateRequest struct {
	Key string `json:"key"`
}

type validateResponse struct {
	Valid     bool    `json:"valid"`
	Plan      string  `json:"plan,omitempty"`
	EAName    string  `json:"ea_name,omitempty"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// Validate checks a license key's shape, existence, status, and expiry.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !licensekey.Pattern.MatchString(req.Key) {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: "malformed"})
		return
	}

	license, err := h.licensing.LookupKey(r.Context(), req.Key)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if license == nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: "not_found"})
		return
	}
	if license.Status == model.LicenseInactive {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: "inactive"})
		return
	}
	if license.ExpiresAt.Before(time.Now().UTC()) {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: "expired"})
		return
	}

	expires := license.ExpiresAt.Format(time.RFC3339)
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:     true,
		Plan:      string(license.Plan),
		EAName:    license.EAName,
		ExpiresAt: &expires,
	})
}
