package domain

import "errors"

var (
	// Rejections of a presented code. All are terminal: retrying cannot
	// change the outcome.
	ErrCodeFormat      = errors.New("code must be exactly 8 characters")
	ErrCodeNotFound    = errors.New("access code not found")
	ErrCodeAlreadyUsed = errors.New("access code already activated")
	ErrCodeExpired     = errors.New("access code expired")

	// Credential and session rejections.
	ErrTokenInvalid   = errors.New("invalid token")
	ErrSessionInvalid = errors.New("no matching active session")
	ErrSessionExpired = errors.New("session expired")

	// Infrastructure.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMalformedRequest = errors.New("missing required fields")
	ErrDuplicateCode    = errors.New("code value already exists")

	ErrNotFound = errors.New("entity not found")
)
