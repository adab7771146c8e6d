package catalog

import "errors"

// Failure taxonomy surfaced to callers. Handlers map these onto status
// codes; the service never decides HTTP semantics.
var (
	ErrValidation         = errors.New("invalid input")
	ErrImageRejected      = errors.New("image rejected")
	ErrConflict           = errors.New("already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)
