package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrLanguageNotFound  = fmt.Errorf("%w: language", ErrNotFound)
	ErrParameterNotFound = fmt.Errorf("%w: parameter", ErrNotFound)
	ErrQuestionNotFound  = fmt.Errorf("%w: question", ErrNotFound)
	ErrAnswerNotFound    = fmt.Errorf("%w: answer", ErrNotFound)

	// Validation errors
	ErrValidation        = errors.New("validation failed")
	ErrInvalidValue      = errors.New("invalid parameter value")
	ErrInvalidResponse   = errors.New("response must be yes or no")
	ErrInvalidStatus     = errors.New("invalid answer status")
	ErrQuestionRelink    = errors.New("question cannot change its parameter")
	ErrInvalidExpression = errors.New("invalid implication expression")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrQuestionRelink) ||
		errors.Is(err, ErrInvalidExpression)
}
