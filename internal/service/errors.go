package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation and ErrCapacity are shared with the mealplan package so
	// generator errors classify the same way as service errors.
	ErrValidation = mealplan.ErrInvalid
	ErrCapacity   = mealplan.ErrCapacity
)

type (
	FieldError    = mealplan.FieldError
	CapacityError = mealplan.CapacityError
)

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// storeErr maps gorm's not-found to ErrNotFound and wraps everything else.
func storeErr(op, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	slog.Error("store operation failed", "op", op, "entity", what, "error", err)
	return fmt.Errorf("failed to %s %s: %w", op, what, err)
}

// isUniqueViolation matches duplicate-key errors from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(mealplan.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalid(field, "must be a date in YYYY-MM-DD form")
	}
	return d, nil
}
