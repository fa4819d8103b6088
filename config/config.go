package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	BackendAPIURL   string        // Backend REST API base URL (auth + user endpoints)
	PageUpstreamURL string        // Page rendering upstream base URL
	Port            string        // Service port
	Environment     string        // "development" or "production"
	CSRFSecret      string        // CSRF secret for token generation
	TwoFactorTTL    time.Duration // Pending two-factor session TTL
	ClientTimeout   time.Duration // Timeout for backend API calls
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		BackendAPIURL:   getEnv("BACKEND_API_URL", "http://backend:8080"),
		PageUpstreamURL: getEnv("PAGE_UPSTREAM_URL", "http://pages:3000"),
		Port:            getEnv("PORT", "8888"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		CSRFSecret:      getEnv("CSRF_SECRET", ""),
		TwoFactorTTL:    5 * time.Minute,
		ClientTimeout:   10 * time.Second,
	}

	// Parse TWOFA_SESSION_TTL if provided
	if ttlStr := os.Getenv("TWOFA_SESSION_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TWOFA_SESSION_TTL format: %w", err)
		}
		config.TwoFactorTTL = duration
	}

	// Parse CLIENT_TIMEOUT if provided
	if timeoutStr := os.Getenv("CLIENT_TIMEOUT"); timeoutStr != "" {
		duration, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CLIENT_TIMEOUT format: %w", err)
		}
		config.ClientTimeout = duration
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BackendAPIURL == "" {
		return fmt.Errorf("BACKEND_API_URL cannot be empty")
	}

	if c.PageUpstreamURL == "" {
		return fmt.Errorf("PAGE_UPSTREAM_URL cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.TwoFactorTTL <= 0 {
		return fmt.Errorf("TWOFA_SESSION_TTL must be positive")
	}

	if c.ClientTimeout <= 0 {
		return fmt.Errorf("CLIENT_TIMEOUT must be positive")
	}

	return nil
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
