// Package config provides small environment getters for process
// entrypoints. Unlike internal/pkg/config these do not aggregate
// warnings; a bad value logs once and the default is used.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the environment value for key, or def when the
// variable is unset or empty.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt returns the environment value for key parsed as a base-10
// integer. Unset, empty or unparseable values yield def; parse failures
// are logged.
func GetEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer environment value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", def))
		return def
	}
	return n
}

// GetEnvDuration returns the environment value for key parsed with
// time.ParseDuration ("30s", "1h30m"). Unset, empty or unparseable
// values yield def; parse failures are logged.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration environment value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", def.String()))
		return def
	}
	return d
}
