package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for the health and metrics endpoints.
var unlimited = EndpointConfig{}

// MatchEndpoint finds the configuration for a request. Exact paths win over
// prefixes, and among prefixes the longest wins. It returns nil when no
// endpoint matches and the default limit applies.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && (path == "/health" || path == "/metrics") {
		u := unlimited
		return &u
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method || !strings.HasSuffix(c.Path, "/") || !strings.HasPrefix(path, c.Path) {
			continue
		}
		if best == nil || len(c.Path) > len(best.Path) {
			best = c
		}
	}
	return best
}
