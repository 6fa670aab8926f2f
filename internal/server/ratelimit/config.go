package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig limits one route. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration // refill period for Limit tokens
	Burst  int           // bucket capacity, Limit when 0
}

// env is the environment shape read by LoadConfig.
type env struct {
	Enabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	DefaultLimit    int           `envconfig:"RATE_LIMIT_DEFAULT_LIMIT" default:"600"`
	DefaultWindow   time.Duration `envconfig:"RATE_LIMIT_DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration `envconfig:"RATE_LIMIT_CLEANUP_INTERVAL" default:"5m"`
	Whitelist       string        `envconfig:"RATE_LIMIT_WHITELIST"`
	Blacklist       string        `envconfig:"RATE_LIMIT_BLACKLIST"`
}

// LoadConfig reads the RATE_LIMIT_* environment variables.
func LoadConfig() (*Config, error) {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	if !e.Enabled {
		return &Config{Enabled: false}, nil
	}
	if e.DefaultLimit < 1 || e.DefaultWindow <= 0 {
		return nil, fmt.Errorf("rate limit: default limit and window must be positive")
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    e.DefaultLimit,
		DefaultWindow:   e.DefaultWindow,
		CleanupInterval: e.CleanupInterval,
		Whitelist:       parseIPList(e.Whitelist),
		Blacklist:       parseIPList(e.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}, nil
}

// DefaultEndpointConfigs returns the portal's per-route limits. Credential
// forms and JD generation hit paid or sensitive backends and get the
// tightest buckets.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/auth/login", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/register", Method: http.MethodPost, Limit: 5, Window: time.Hour, Burst: 3},
		{Path: "/dashboard/jd/create", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 3},

		{Path: "/dashboard/resume/", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/dashboard/assessment/", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/dashboard/offer/", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/candidate/tests/", Method: http.MethodPost, Limit: 300, Window: time.Minute, Burst: 60},
	}
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
