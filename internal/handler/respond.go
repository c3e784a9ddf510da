package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders a service failure as an inline JSON error. Every
// failure short of a full store outage is something the caller can fix and
// resubmit.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInvalidPlan):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateEmail), errors.Is(err, apperr.ErrReferentialIntegrity):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrCapacityExceeded):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, apperr.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
