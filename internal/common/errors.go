// Package common contains shared sentinel errors used across the dealership
// backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors. Absent account and wrong password are deliberately
	// merged into ErrInvalidCredentials so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidOldPassword = errors.New("invalid old password")
	ErrSamePassword       = errors.New("new password must differ from the old one")

	// Token codec errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Password-reset errors.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidTokenType      = errors.New("invalid token type")
	ErrMalformedToken        = errors.New("malformed token")
	ErrUserNotFound          = errors.New("user not found")

	// Infrastructure errors (recoverable, logged, never shown verbatim).
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrEmailDelivery    = errors.New("email delivery failed")
)
