package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCycle indicates that a parent assignment would make the account hierarchy cyclic.
var ErrCycle = errors.New("account hierarchy cycle")

// ErrUnbalancedEntry indicates that the debits of a journal entry do not equal its credits.
var ErrUnbalancedEntry = errors.New("journal entry is not balanced")

// ErrInvalidState indicates an illegal state transition.
var ErrInvalidState = errors.New("invalid state transition")

// ErrImmutableField indicates an attempt to change a field that is frozen.
var ErrImmutableField = errors.New("field cannot be changed")

// ErrProtectedAccount indicates an attempt to delete, deactivate or modify a system account.
var ErrProtectedAccount = errors.New("system account is protected")

// ErrMissingControlAccount indicates that a required receivable/payable account is absent.
var ErrMissingControlAccount = errors.New("control account not found")

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

// AppError carries a status-like code and a message next to the underlying cause.
// Repositories use it to wrap driver failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a message.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}
