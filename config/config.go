package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration; an empty URL and host disable caching and rate limiting
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret      string
	JWTExpiryHours int

	LogLevel    string
	CORSOrigins []string

	// Export archive bucket; archiving is off when empty
	S3Bucket string
	S3Region string

	// Meal plan defaults
	WeeklyMinDays  int
	WeeklyMaxDays  int
	MonthlyMinDays int
	MonthlyMaxDays int
	DefaultSlots   []string

	// Bootstrap admin, created on start when no admin exists
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// DatabaseURL returns the postgres URL form used by the migration tool.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err := loadCommon(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadCIConfig reads credentials from the CI environment only.
func loadCIConfig(cfg *Config) {
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		cfg.DBPassword = os.Getenv("DB_PASSWORD")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
}

// loadDevConfig prefers environment variables and falls back to secret files.
func loadDevConfig(cfg *Config) {
	cfg.DBUser = envOrSecret("DB_USER", "db_user", "postgres")
	cfg.DBPassword = envOrSecret("DB_PASSWORD", "db_password", "postgres")
	cfg.JWTSecret = envOrSecret("JWT_SECRET", "jwt_secret", "")
	cfg.RedisPassword = envOrSecret("REDIS_PASSWORD", "redis_password", "")
	cfg.AdminPassword = envOrSecret("ADMIN_PASSWORD", "admin_password", "")
}

// loadProdConfig reads credentials from Docker secrets only.
func loadProdConfig(cfg *Config) {
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.AdminPassword = readSecret("admin_password")
}

func loadCommon(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBName = getEnv("DB_NAME", "mealdesk")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "mealdesk.db")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.CORSOrigins = getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = getEnv("AWS_REGION", "us-east-1")
	cfg.DefaultSlots = getList("DEFAULT_TIME_SLOTS", []string{"08:00", "13:00", "19:00"})

	cfg.AdminName = getEnv("ADMIN_NAME", "Administrator")
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"JWT_EXPIRY_HOURS", 24, &cfg.JWTExpiryHours},
		{"PLAN_WEEKLY_MIN_DAYS", 5, &cfg.WeeklyMinDays},
		{"PLAN_WEEKLY_MAX_DAYS", 7, &cfg.WeeklyMaxDays},
		{"PLAN_MONTHLY_MIN_DAYS", 20, &cfg.MonthlyMinDays},
		{"PLAN_MONTHLY_MAX_DAYS", 30, &cfg.MonthlyMaxDays},
	}
	for _, i := range ints {
		v, err := getInt(i.key, i.def)
		if err != nil {
			return err
		}
		*i.dest = v
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrSecret(key, secret, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := readSecret(secret); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
