package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

// Error kinds. Every error below wraps exactly one of them, and the HTTP
// layer maps kinds to status codes.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrMissingFields      = kind(ErrValidation, "missing fields")
	ErrInvalidQuantity    = kind(ErrValidation, fmt.Sprintf("quantity must be between 1 and %d", models.MaxCartQuantity))
	ErrInvalidPrice       = kind(ErrValidation, "price must be greater than 0, below 100000000 and have at most 2 decimals")
	ErrInvalidImage       = kind(ErrValidation, "unsupported image format")
	ErrDuplicateEmail     = kind(ErrConflict, "email already exists")
	ErrInvalidCredentials = kind(ErrUnauthorized, "invalid email or password")
	ErrTokenMissing       = kind(ErrUnauthorized, "token missing")
	ErrTokenInvalid       = kind(ErrUnauthorized, "token invalid or expired")
	ErrAdminOnly          = kind(ErrForbidden, "admin only")
	ErrUserOnly           = kind(ErrForbidden, "user account required")
	ErrProductNotFound    = kind(ErrNotFound, "product not found")
	ErrUserNotFound       = kind(ErrNotFound, "user not found")
	ErrCartLineNotFound   = kind(ErrNotFound, "cart item not found")
)

type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// validationf builds an ad-hoc validation error with a custom message.
func validationf(format string, args ...interface{}) error {
	return kind(ErrValidation, fmt.Sprintf(format, args...))
}
