package services

import (
	"errors"
	"fmt"
	"maps"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports a match on error type, so any not_found error matches ErrUserNotFound.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail returns a copy of e with the detail added. The package-level
// sentinels are shared and never modified.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+1)
	maps.Copy(cp.Details, e.Details)
	cp.Details[key] = value
	return &cp
}

// WithCause returns a copy of e wrapping err.
func (e *DomainError) WithCause(err error) *DomainError {
	cp := *e
	cp.Err = err
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrUserNotFound = NewDomainError(ErrorTypeNotFound, "user not found", nil)

	// Validation Errors
	ErrInvalidInput      = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidAuthority  = NewDomainError(ErrorTypeValidation, "invalid authority", nil)
	ErrReservedAuthority = NewDomainError(ErrorTypeValidation, "authority cannot be assigned", nil)

	// Authorization Errors
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid login or password", nil)

	// Permission Errors
	ErrForbidden        = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrUserNotActivated = NewDomainError(ErrorTypeForbidden, "user account is not activated", nil)

	// Conflict Errors
	ErrDuplicateLogin = NewDomainError(ErrorTypeConflict, "login already in use", nil)

	// Internal Errors
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError = NewDomainError(ErrorTypeInternal, "database error", nil)
)

// Error type checking helper functions

func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool { return isType(err, ErrorTypeUnauthorized) }

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool { return isType(err, ErrorTypeForbidden) }

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool { return isType(err, ErrorTypeConflict) }

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool { return isType(err, ErrorTypeInternal) }

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
