package common

import (
	"errors"
	"strings"
)

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors, each maps to one client-facing status
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorValidation   = errors.New("validation error")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Error is a failure meant to be shown to the API caller. Kind is one of the
// service specific errors above and decides the response status.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// FieldsError reports request fields that may not be changed.
type FieldsError struct {
	Fields []string
}

func (e *FieldsError) Error() string {
	return "Cannot update fields: " + strings.Join(e.Fields, ", ")
}

func (e *FieldsError) Unwrap() error { return ErrorValidation }

var (
	ErrEmailInUse           = NewError(ErrorConflict, "email in use!")
	ErrPasswordUnchanged    = NewError(ErrorConflict, "The new password can't be the same as the old one!")
	ErrTaskAlreadyCompleted = NewError(ErrorConflict, "This task is already completed")
	ErrInvalidCredentials   = NewError(ErrorUnauthorized, "invalid email or password")
	ErrEmailNotRegistered   = NewError(ErrorNotFound, "The given email is not registered yet!")
	ErrUserNotFound         = NewError(ErrorNotFound, "User not found!")
	ErrTaskNotFound         = NewError(ErrorNotFound, "Task not found")
	ErrMissingCredentials   = NewError(ErrorUnauthorized, "Unauthorized")
)
