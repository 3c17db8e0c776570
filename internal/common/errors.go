// Package common defines sentinel errors shared by the repositories,
// services and HTTP layer of the portal. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// ErrSaveFailed reports that a submission record could not be written.
	// Uploaded files may already be stored when it is returned.
	ErrSaveFailed = errors.New("save failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrGeocoderNotConfigured = errors.New("geocoder credentials are not configured")
)
