package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/licensing"
	"github.com/quicktradepro/quicktrade/internal/middleware"
	"github.com/quicktradepro/quicktrade/internal/model"
)

type LicenseHandler struct {
	licensing *licensing.Service
}

func NewLicenseHandler(ls *licensing.Service) *LicenseHandler {
	return &LicenseHandler{licensing: ls}
}

func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	licenses, err := h.licensing.ListLicenses(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if licenses == nil {
		licenses = []*model.License{}
	}
	writeJSON(w, http.StatusOK, licenses)
}

type issueRequest struct {
	Assignee string `json:"assignee"`
	EAID     string `json:"ea_id"`
	Plan     string `json:"plan"`
}

// Issue cuts a new license key for an EA the account owns.
func (h *LicenseHandler) Issue(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	license, err := h.licensing.IssueLicense(r.Context(), accountID, req.Assignee, req.EAID, model.Plan(req.Plan))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, license)
}

func (h *LicenseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	id := r.PathValue("id")

	ok, err := h.licensing.DeactivateLicense(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
}

func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	id := r.PathValue("id")

	deleted, err := h.licensing.DeleteLicense(r.Context(), accountID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Stats returns the dashboard counters, recomputed on every call.
func (h *LicenseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	stats, err := h.licensing.Stats(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
