package shared

import (
	"errors"
	"fmt"
)

// Error codes used across harvest domains
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONCURRENCY_CONFLICT"
	CodeState      = "INVALID_STATE"
	CodeTransient  = "TRANSIENT"

	// CodeNotConfigured marks an optional integration that is switched off
	CodeNotConfigured = "NOT_CONFIGURED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error carrying an extra detail entry
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: e.Details, cause: cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewPermissionError reports that the actor's role may not perform an action.
func NewPermissionError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id)).
		WithDetail("resource", resource).
		WithDetail("id", fmt.Sprint(id))
}

// NewConflictError reports a lost race on a conditional write.
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewInvalidStateError reports records that are not in the state an operation requires.
// offendingIDs is attached to Details so callers can show which records blocked the operation.
func NewInvalidStateError(message string, offendingIDs ...string) *DomainError {
	err := NewDomainError(CodeState, message)
	if len(offendingIDs) > 0 {
		err = err.WithDetail("offending_ids", offendingIDs)
	}
	return err
}

// NewTransientError wraps a retryable infrastructure failure
func NewTransientError(message string, cause error) *DomainError {
	return NewDomainError(CodeTransient, message).WithCause(cause)
}

// IsTransient reports whether err is a retryable failure
func IsTransient(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == CodeTransient
	}
	return false
}

// HasCode reports whether err is a DomainError with the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeState, "Operation not allowed in current state")
	ErrTransient           = NewDomainError(CodeTransient, "Temporary failure, please retry")
)
