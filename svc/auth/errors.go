package auth

import "errors"

var (
	// ErrUnauthorized covers missing, unknown and expired tokens as well as
	// bad credentials. Callers cannot tell which.
	ErrUnauthorized = errors.New("unauthorized")

	ErrMissingEmail       = errors.New("missing email")
	ErrMissingPassword    = errors.New("missing password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
)
