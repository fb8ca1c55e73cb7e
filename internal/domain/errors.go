package domain

import "errors"

// Error kinds shared by every service. Services wrap these with context via
// fmt.Errorf("...: %w", ...); the HTTP layer resolves the kind with
// errors.Is and maps it to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
