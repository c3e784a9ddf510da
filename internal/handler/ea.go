package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/licensing"
	"github.com/quicktradepro/quicktrade/internal/middleware"
	"github.com/quicktradepro/quicktrade/internal/model"
)

type EAHandler struct {
	licensing *licensing.Service
}

func NewEAHandler(ls *licensing.Service) *EAHandler {
	return &EAHandler{licensing: ls}
}

func (h *EAHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	eas, err := h.licensing.ListEAs(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if eas == nil {
		eas = []*model.EA{}
	}
	writeJSON(w, http.StatusOK, eas)
}

func (h *EAHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	ea, err := h.licensing.CreateEA(r.Context(), accountID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ea)
}

func (h *EAHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())
	id := r.PathValue("id")

	deleted, err := h.licensing.DeleteEA(r.Context(), accountID, id)
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
