package utils

import "errors"

// Sentinel errors for everything the handlers recover at the boundary.
// None of these carry internal detail; that goes to the log instead.
var (
	ErrInvalidRequestMethod = errors.New("invalid request method")
	ErrCSRFMismatch         = errors.New("invalid csrf token")
	ErrRateLimited          = errors.New("too many failed login attempts")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrPersistence          = errors.New("persistence failure")
)
