package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig limits one route. A Path ending in "/" covers every path
// under it; a Limit of zero leaves the route unlimited.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit
}

// NewConfig builds the server's rate limiting configuration. requestsPerMinute
// and burst apply to the analysis endpoint; a non-positive requestsPerMinute
// disables limiting.
func NewConfig(requestsPerMinute, burst int, whitelist string) *Config {
	if requestsPerMinute <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = requestsPerMinute
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    requestsPerMinute * 10,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       ParseIPList(whitelist),
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(requestsPerMinute, burst),
	}
}

// DefaultEndpointConfigs limits each analysis route by the configured rate.
// Batches cost more, so they get a tenth of it. Rule reloads are rare and
// health checks are exempt. Other reads fall back to the default limit.
func DefaultEndpointConfigs(requestsPerMinute, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: requestsPerMinute, Window: time.Minute, Burst: burst},
		{Path: "/analyze/batch", Method: "POST", Limit: max(requestsPerMinute/10, 1), Window: time.Minute, Burst: max(burst/5, 1)},
		{Path: "/rules/", Method: "POST", Limit: 6, Window: time.Minute, Burst: 1},
		{Path: "/health", Method: "GET"},
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a map.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
