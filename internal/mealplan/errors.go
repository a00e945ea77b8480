package mealplan

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is wrapped by every FieldError.
	ErrInvalid = errors.New("invalid input")
	// ErrCapacity is wrapped by every CapacityError.
	ErrCapacity = errors.New("plan capacity exceeded")
)

// FieldError identifies the input field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// CapacityError reports a meal or week cap that an operation would break.
type CapacityError struct {
	Kind  string // "meals" or "weeks"
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("would exceed the plan's limit of %d %s", e.Limit, e.Kind)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
