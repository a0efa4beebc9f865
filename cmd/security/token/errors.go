package token

import "errors"

// Public, stable errors for callers.
var (
	ErrConfig         = errors.New("invalid token configuration")
	ErrSecretMissing  = errors.New("token signing secret missing")
	ErrSecretTooShort = errors.New("token signing secret too short")
)
