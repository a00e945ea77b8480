package config

import (
	"fmt"
	"strings"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBPassword == "" && cfg.Environment != Development && cfg.Environment != Test {
			add("db_password", "is required in %s", cfg.Environment)
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite, got %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		add("jwt_secret", "is required")
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < 32 {
		add("jwt_secret", "must be at least 32 characters in production")
	}
	if cfg.JWTExpiryHours <= 0 {
		add("JWT_EXPIRY_HOURS", "must be positive")
	}
	if !logLevels[strings.ToLower(cfg.LogLevel)] {
		add("LOG_LEVEL", "must be debug, info, warn or error")
	}
	if cfg.S3Bucket != "" && cfg.S3Region == "" {
		add("AWS_REGION", "is required when S3_BUCKET is set")
	}

	if cfg.WeeklyMinDays < 1 || cfg.WeeklyMinDays > cfg.WeeklyMaxDays {
		add("PLAN_WEEKLY_MIN_DAYS", "must be between 1 and PLAN_WEEKLY_MAX_DAYS")
	}
	if cfg.MonthlyMinDays <= cfg.WeeklyMaxDays || cfg.MonthlyMinDays > cfg.MonthlyMaxDays {
		add("PLAN_MONTHLY_MIN_DAYS", "must be above the weekly range and not above PLAN_MONTHLY_MAX_DAYS")
	}
	if len(cfg.DefaultSlots) == 0 || len(cfg.DefaultSlots) > mealplan.MaxMealsPerDay {
		add("DEFAULT_TIME_SLOTS", "must list between 1 and %d slots", mealplan.MaxMealsPerDay)
	}
	for _, slot := range cfg.DefaultSlots {
		if _, err := mealplan.NormalizeTime(slot); err != nil {
			add("DEFAULT_TIME_SLOTS", "%q is not a valid time", slot)
		}
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		add("ADMIN_EMAIL", "ADMIN_EMAIL and admin_password must be set together")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TypeRules returns the plan-type inference thresholds.
func (c *Config) TypeRules() mealplan.TypeRules {
	return mealplan.TypeRules{
		WeeklyMin:  c.WeeklyMinDays,
		WeeklyMax:  c.WeeklyMaxDays,
		MonthlyMin: c.MonthlyMinDays,
		MonthlyMax: c.MonthlyMaxDays,
	}
}
