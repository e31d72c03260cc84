package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	DBUrl       string

	JWTSecret            string
	JWTExpiry            time.Duration
	AnonymousTokenExpiry time.Duration
	ContextTimeout       time.Duration
	EditorIdleTimeout    time.Duration

	PublicBaseURL  string
	AllowedOrigins []string

	GuestPhoneRequired bool
	SelectionMode      string
	SelectionLimit     int

	AMQPUrl string

	EmailProvider    string
	EmailFromAddress string
	EmailFromName    string
	AWSRegion        string
	AWSAccessKeyID   string
	AWSSecretKey     string
}

// MissingConfigError lists required connection parameters that were not supplied.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the .env file is usually absent and the process environment is authoritative.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:      env,
		Port:             getEnv("PORT", "8080"),
		DBUrl:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		PublicBaseURL:    strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SelectionMode:    strings.ToLower(getEnv("SELECTION_MODE", "multi")),
		AMQPUrl:          strings.TrimSpace(os.Getenv("AMQP_URL")),
		EmailProvider:    getEnv("EMAIL_PROVIDER", "noop"),
		EmailFromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailFromName:    os.Getenv("EMAIL_FROM_NAME"),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:   os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	var missing []string
	if cfg.DBUrl == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, &MissingConfigError{Keys: missing}
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AnonymousTokenExpiry, err = getDuration("ANONYMOUS_TOKEN_EXPIRY", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ContextTimeout, err = getDuration("CONTEXT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.EditorIdleTimeout, err = getDuration("EDITOR_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.GuestPhoneRequired, err = getBool("GUEST_PHONE_REQUIRED", false); err != nil {
		return nil, err
	}
	if cfg.SelectionLimit, err = getInt("SELECTION_LIMIT", 2); err != nil {
		return nil, err
	}
	if cfg.SelectionLimit < 1 {
		return nil, fmt.Errorf("SELECTION_LIMIT must be at least 1")
	}
	if cfg.SelectionMode != "multi" && cfg.SelectionMode != "per_category" {
		return nil, fmt.Errorf("SELECTION_MODE must be \"multi\" or \"per_category\"")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
