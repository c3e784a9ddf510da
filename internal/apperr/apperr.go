// Package apperr defines the sentinel errors shared by the licensing and
// account services. Handlers match them with errors.Is to pick a status code.
package apperr

import "errors"

var (
	ErrValidation           = errors.New("invalid input")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("ea is referenced by license keys")
	ErrCapacityExceeded     = errors.New("license limit reached")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidPlan          = errors.New("unknown plan")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
