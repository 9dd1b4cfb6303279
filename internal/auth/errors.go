package auth

import "errors"

var (
	ErrNotFound       = errors.New("auth: user not found")
	ErrDuplicateEmail = errors.New("auth: email already registered")
)
