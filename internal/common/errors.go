// Package common defines shared constants, helpers and sentinel errors used
// across the Colisso server and CLI. Callers should use errors.Is / errors.As
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// service specific errors
	ErrorInternal          = errors.New("internal error")
	ErrorUnauthorized      = errors.New("unauthorized")
	ErrorForbidden         = errors.New("forbidden")
	ErrorValidation        = errors.New("validation error")
	ErrorPaymentRequired   = errors.New("label is not paid")
	ErrorRender            = errors.New("render error")
	ErrTrackingIDCollision = errors.New("could not allocate a unique tracking id")

	// auth errors (invalid or malformed token)
	ErrInvalidToken = errors.New("invalid token")

	// token lifecycle errors
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// ValidationError reports a rejected input field. It matches ErrorValidation
// through errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}
