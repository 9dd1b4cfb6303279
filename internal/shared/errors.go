package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPermissionDenied indicates the caller's role does not allow the operation.
	ErrPermissionDenied = errors.New("permission denied")
)
