package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrAlreadySubmitted   = errors.New("guest has already submitted for this event")
	ErrSelectionLimit     = errors.New("selection limit reached")
	ErrSubmissionClosed   = errors.New("submission already completed")
	ErrSaveInProgress     = errors.New("save already in progress")
	ErrSessionNotFound    = errors.New("editor session not found")
)

// ValidationError reports a single field that failed client-facing validation.
// Field is the form field name ("name", "email", "phone", "selection").
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError returns a ValidationError for field with the given user-facing message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
