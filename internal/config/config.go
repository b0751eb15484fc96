// Package config provides configuration helpers for go-facegate commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the capture commands.
const (
	DefaultServerURL = "http://localhost:8080"
)

// ServerURL returns the auth service base URL from FACEGATE_URL.
// Falls back to the provided default if not set.
func ServerURL(defaultURL string) string {
	if url := os.Getenv("FACEGATE_URL"); url != "" {
		return url
	}
	return defaultURL
}

// LogLevel returns the log level from FACEGATE_LOG, default "info".
func LogLevel() string {
	if lvl := os.Getenv("FACEGATE_LOG"); lvl != "" {
		return lvl
	}
	return "info"
}

// DataDir returns the state directory from FACEGATE_DATA.
// Empty means the OS user config directory.
func DataDir() string {
	return os.Getenv("FACEGATE_DATA")
}

// EnvFloat reads a float from an env var, falling back on the default
// when unset or unparsable.
func EnvFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

// EnvMillis reads a millisecond count from an env var as a duration.
func EnvMillis(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	}
	return def
}
