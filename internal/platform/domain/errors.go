package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError so transports can map it to a status code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
)

// AppError is a domain error carrying a kind and a client-safe message.
type AppError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewValidationError creates an error for invalid input.
func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

// NewInvalidStateError creates an error for a forbidden state transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInvalidStateMessage creates an invalid-state error with a free-form message.
func NewInvalidStateMessage(msg string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: msg}
}

// NewConflictError creates an error for concurrent modification or uniqueness violations.
func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

// NewUnauthorizedError creates an error for failed authentication.
func NewUnauthorizedError(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

// NewForbiddenError creates an error for insufficient permissions.
func NewForbiddenError(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

// KindOf returns the kind of err if it wraps an AppError.
func KindOf(err error) (ErrorKind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsInvalidState reports whether err is an invalid-state error.
func IsInvalidState(err error) bool { return isKind(err, KindInvalidState) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsUnauthorized reports whether err is an unauthorized error.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }
