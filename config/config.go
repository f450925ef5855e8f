package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the deployment configuration read from the environment.
// The SSO credentials may legitimately be absent: the portal then runs
// with SSO login failing closed until they are configured.
type Config struct {
	Port         string `validate:"required"`
	BaseURL      string `validate:"required,url"`
	DatabasePath string `validate:"required"`
	UseHTTPS     bool

	ClientID     string
	ClientSecret string
	TenantID     string
	Authority    string `validate:"omitempty,url"`
}

// Load reads the configuration from .env (if present) and the process
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		BaseURL:      getenv("BASE_URL", "http://localhost:8080"),
		DatabasePath: getenv("DATABASE_PATH", "ssoportal.db"),
		UseHTTPS:     os.Getenv("USE_HTTPS") == "true",
		ClientID:     os.Getenv("SSO_CLIENT_ID"),
		ClientSecret: os.Getenv("SSO_CLIENT_SECRET"),
		TenantID:     os.Getenv("SSO_TENANT_ID"),
		Authority:    os.Getenv("SSO_AUTHORITY"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// CallbackURL returns the absolute URL of the SSO callback endpoint.
// The identity provider requires it to match the registered redirect
// URI byte-for-byte.
func (c *Config) CallbackURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/callback"
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
