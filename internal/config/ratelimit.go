package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the fixed-window limiter applied to the
// credential endpoints (login and register).
type RateLimitConfig struct {
	Enabled bool
	Limit   int           // allowed requests per window
	Window  time.Duration // window length
	Prefix  string        // redis key namespace
}

// LoadRateLimitConfig reads rate-limit settings from the environment with
// defaults tuned for brute-force protection rather than general throttling.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Limit:   atoiDef(os.Getenv("RATE_LIMIT_MAX"), 10),
		Window:  durDef(os.Getenv("RATE_LIMIT_WINDOW"), time.Minute),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "ratelimit"),
	}
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func durDef(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
