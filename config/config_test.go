package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		cleanupEnv  func()
		expected    *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "default configuration when no env vars set",
			setupEnv: func() {
				// Clear all relevant env vars
				os.Unsetenv("BACKEND_API_URL")
				os.Unsetenv("PAGE_UPSTREAM_URL")
				os.Unsetenv("PORT")
				os.Unsetenv("TWOFA_SESSION_TTL")
				os.Unsetenv("CLIENT_TIMEOUT")
			},
			cleanupEnv: func() {},
			expected: &Config{
				BackendAPIURL:   "http://backend:8080",
				PageUpstreamURL: "http://pages:3000",
				Port:            "8888",
				TwoFactorTTL:    5 * time.Minute,
				ClientTimeout:   10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "custom configuration from environment variables",
			setupEnv: func() {
				os.Setenv("BACKEND_API_URL", "http://custom-backend:9090")
				os.Setenv("PAGE_UPSTREAM_URL", "http://custom-pages:4000")
				os.Setenv("PORT", "9999")
				os.Setenv("TWOFA_SESSION_TTL", "10m")
				os.Setenv("CLIENT_TIMEOUT", "30s")
			},
			cleanupEnv: func() {
				os.Unsetenv("BACKEND_API_URL")
				os.Unsetenv("PAGE_UPSTREAM_URL")
				os.Unsetenv("PORT")
				os.Unsetenv("TWOFA_SESSION_TTL")
				os.Unsetenv("CLIENT_TIMEOUT")
			},
			expected: &Config{
				BackendAPIURL:   "http://custom-backend:9090",
				PageUpstreamURL: "http://custom-pages:4000",
				Port:            "9999",
				TwoFactorTTL:    10 * time.Minute,
				ClientTimeout:   30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "invalid two-factor TTL format returns error",
			setupEnv: func() {
				os.Setenv("TWOFA_SESSION_TTL", "invalid")
			},
			cleanupEnv: func() {
				os.Unsetenv("TWOFA_SESSION_TTL")
			},
			expected:    nil,
			wantErr:     true,
			errContains: "invalid TWOFA_SESSION_TTL",
		},
		{
			name: "partial configuration with defaults",
			setupEnv: func() {
				os.Setenv("BACKEND_API_URL", "http://localhost:8080")
				os.Unsetenv("PAGE_UPSTREAM_URL")
				os.Unsetenv("PORT")
				os.Unsetenv("TWOFA_SESSION_TTL")
			},
			cleanupEnv: func() {
				os.Unsetenv("BACKEND_API_URL")
			},
			expected: &Config{
				BackendAPIURL:   "http://localhost:8080",
				PageUpstreamURL: "http://pages:3000",
				Port:            "8888",
				TwoFactorTTL:    5 * time.Minute,
				ClientTimeout:   10 * time.Second,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setupEnv()
			defer tt.cleanupEnv()

			// Execute
			got, err := Load()

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.expected.BackendAPIURL, got.BackendAPIURL)
			assert.Equal(t, tt.expected.PageUpstreamURL, got.PageUpstreamURL)
			assert.Equal(t, tt.expected.Port, got.Port)
			assert.Equal(t, tt.expected.TwoFactorTTL, got.TwoFactorTTL)
			assert.Equal(t, tt.expected.ClientTimeout, got.ClientTimeout)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BackendAPIURL:   "http://backend:8080",
			PageUpstreamURL: "http://pages:3000",
			Port:            "8888",
			TwoFactorTTL:    5 * time.Minute,
			ClientTimeout:   10 * time.Second,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid configuration",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "missing backend API URL",
			mutate:      func(c *Config) { c.BackendAPIURL = "" },
			wantErr:     true,
			errContains: "BACKEND_API_URL",
		},
		{
			name:        "missing page upstream URL",
			mutate:      func(c *Config) { c.PageUpstreamURL = "" },
			wantErr:     true,
			errContains: "PAGE_UPSTREAM_URL",
		},
		{
			name:        "missing port",
			mutate:      func(c *Config) { c.Port = "" },
			wantErr:     true,
			errContains: "PORT",
		},
		{
			name:        "invalid two-factor TTL (zero)",
			mutate:      func(c *Config) { c.TwoFactorTTL = 0 },
			wantErr:     true,
			errContains: "TWOFA_SESSION_TTL",
		},
		{
			name:        "invalid client timeout (negative)",
			mutate:      func(c *Config) { c.ClientTimeout = -1 * time.Second },
			wantErr:     true,
			errContains: "CLIENT_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_SecureCookies(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).SecureCookies())
	assert.False(t, (&Config{Environment: "development"}).SecureCookies())
}
