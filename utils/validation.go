package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate

	// loginRegex matches the characters allowed in account logins
	loginRegex = regexp.MustCompile(`^[_.@A-Za-z0-9-]+$`)

	// authorityRegex matches role-style authority names such as ROLE_ADMIN
	authorityRegex = regexp.MustCompile(`^ROLE_[A-Z0-9_]+$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return loginRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("authority", func(fl validator.FieldLevel) bool {
		return authorityRegex.MatchString(fl.Field().String())
	})
}

// ValidateStruct validates a struct using go-playground/validator.
// Besides the built-in tags it understands "login" and "authority".
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "email":
			fields[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "login":
			fields[field] = fmt.Sprintf("%s may only contain letters, digits and _.@-", field)
		case "authority":
			fields[field] = fmt.Sprintf("%s must look like ROLE_NAME", field)
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
		}
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// IsValidAuthority reports whether s is a well-formed authority name
func IsValidAuthority(s string) bool {
	return authorityRegex.MatchString(s)
}
