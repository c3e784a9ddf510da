package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
	"github.com/quicktradepro/quicktrade/internal/directory"
	"github.com/quicktradepro/quicktrade/internal/middleware"
)

type ProfileHandler struct {
	directory *directory.Service
}

func NewProfileHandler(d *directory.Service) *ProfileHandler {
	return &ProfileHandler{directory: d}
}

// updateRequest deliberately enumerates the fields a caller may change.
// Anything else in the request body is ignored, not applied.
type updateRequest struct {
	DisplayName *string `json:"display_name"`
	FullName    *string `json:"full_name"`
	Phone       *string `json:"phone"`
	AvatarRef   *string `json:"avatar_ref"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFromContext(r.Context())

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation)
		return
	}

	account, err := h.directory.UpdateProfile(r.Context(), accountID, directory.ProfilePatch{
		DisplayName: req.DisplayName,
		FullName:    req.FullName,
		Phone:       req.Phone,
		AvatarRef:   req.AvatarRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
