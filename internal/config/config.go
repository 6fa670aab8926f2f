// Package config provides configuration loading and validation for the portal and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	rootschemas "github.com/jonathan/recruit-portal/schemas"
)

const (
	// DefaultMainAPIURL is used when no main API base URL is configured.
	DefaultMainAPIURL = "http://localhost:3000/api"
	// DefaultAuthAPIURL is used when no auth API base URL is configured.
	DefaultAuthAPIURL = "http://localhost:5000/api"
)

// Config holds the runtime configuration. Values come from the environment first,
// then from an optional JSON config file, then from built-in defaults.
type Config struct {
	MainAPIURL string `envconfig:"RECRUIT_MAIN_API_URL"`
	AuthAPIURL string `envconfig:"RECRUIT_AUTH_API_URL"`

	Port     int    `envconfig:"RECRUIT_PORT"`
	LogLevel string `envconfig:"RECRUIT_LOG_LEVEL"`

	RequestTimeout time.Duration `envconfig:"RECRUIT_REQUEST_TIMEOUT"`

	// DatabaseURL enables PostgreSQL-backed sessions when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// TokenFile is where the CLI persists its storage items (token, cached user).
	TokenFile string `envconfig:"RECRUIT_TOKEN_FILE"`

	TestDuration        time.Duration `envconfig:"RECRUIT_TEST_DURATION"`
	SubmitRedirectDelay time.Duration `envconfig:"RECRUIT_SUBMIT_REDIRECT_DELAY"`
}

// FileConfig is the JSON shape of the optional config file.
// All fields are optional; durations use Go duration syntax ("30s", "1h").
type FileConfig struct {
	MainAPIURL          string `json:"main_api_url,omitempty"`
	AuthAPIURL          string `json:"auth_api_url,omitempty"`
	Port                int    `json:"port,omitempty"`
	LogLevel            string `json:"log_level,omitempty"`
	RequestTimeout      string `json:"request_timeout,omitempty"`
	DatabaseURL         string `json:"database_url,omitempty"`
	TokenFile           string `json:"token_file,omitempty"`
	TestDuration        string `json:"test_duration,omitempty"`
	SubmitRedirectDelay string `json:"submit_redirect_delay,omitempty"`
}

// Default returns the built-in defaults.
func Default() Config {
	tokenFile := filepath.Join(".recruit_portal", "storage.json")
	if home, err := os.UserHomeDir(); err == nil {
		tokenFile = filepath.Join(home, ".recruit_portal", "storage.json")
	}
	return Config{
		MainAPIURL:          DefaultMainAPIURL,
		AuthAPIURL:          DefaultAuthAPIURL,
		Port:                8080,
		LogLevel:            "info",
		RequestTimeout:      30 * time.Second,
		TokenFile:           tokenFile,
		TestDuration:        time.Hour,
		SubmitRedirectDelay: 1500 * time.Millisecond,
	}
}

// Load reads the environment, overlays the optional config file at path and fills the
// remaining gaps with defaults. The result is validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		fileCfg, err := fc.toConfig()
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(fileCfg)
	}

	cfg = cfg.MergeWithDefaults(Default())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads and schema-validates a JSON config file.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := rootschemas.Config.Validate(data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *FileConfig) toConfig() (Config, error) {
	cfg := Config{
		MainAPIURL:  fc.MainAPIURL,
		AuthAPIURL:  fc.AuthAPIURL,
		Port:        fc.Port,
		LogLevel:    fc.LogLevel,
		DatabaseURL: fc.DatabaseURL,
		TokenFile:   fc.TokenFile,
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"test_duration", fc.TestDuration, &cfg.TestDuration},
		{"submit_redirect_delay", fc.SubmitRedirectDelay, &cfg.SubmitRedirectDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("config error: '%s' is not a valid duration: %w", d.name, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c Config) MergeWithDefaults(defaults Config) Config {
	result := c

	if result.MainAPIURL == "" {
		result.MainAPIURL = defaults.MainAPIURL
	}
	if result.AuthAPIURL == "" {
		result.AuthAPIURL = defaults.AuthAPIURL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.RequestTimeout == 0 {
		result.RequestTimeout = defaults.RequestTimeout
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.TokenFile == "" {
		result.TokenFile = defaults.TokenFile
	}
	if result.TestDuration == 0 {
		result.TestDuration = defaults.TestDuration
	}
	if result.SubmitRedirectDelay == 0 {
		result.SubmitRedirectDelay = defaults.SubmitRedirectDelay
	}

	return result
}

// Validate checks that the configuration has usable values.
func (c Config) Validate() error {
	for name, raw := range map[string]string{"main_api_url": c.MainAPIURL, "auth_api_url": c.AuthAPIURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an absolute http(s) URL, got %q", name, raw)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: invalid 'log_level' %q", c.LogLevel)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config error: 'request_timeout' must be positive")
	}
	if c.TestDuration <= 0 {
		return fmt.Errorf("config error: 'test_duration' must be positive")
	}
	if c.SubmitRedirectDelay < 0 {
		return fmt.Errorf("config error: 'submit_redirect_delay' must be non-negative")
	}
	return nil
}

// String renders the config for startup logs without credentials.
func (c Config) String() string {
	db := "memory"
	if c.DatabaseURL != "" {
		db = "postgres"
	}
	return fmt.Sprintf("main=%s auth=%s port=%d log=%s sessions=%s", c.MainAPIURL, c.AuthAPIURL, c.Port, c.LogLevel, db)
}
