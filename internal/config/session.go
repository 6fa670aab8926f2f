package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// SessionConfig holds configuration for the portal's signed session cookie.
type SessionConfig struct {
	Secret          string `envconfig:"SESSION_SECRET"`
	ExpirationHours int    `envconfig:"SESSION_EXPIRATION_HOURS" default:"24"`
	CookieSecure    bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

// NewSessionConfig creates a session configuration from environment variables.
// SESSION_SECRET is required.
func NewSessionConfig() (*SessionConfig, error) {
	var cfg SessionConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid session configuration: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the configuration.
func (c *SessionConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required but not set")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("SESSION_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
