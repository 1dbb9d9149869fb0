// Package config provides fail-open environment loading shared by the
// worker and API processes. Invalid values never abort startup: the
// loader falls back to the supplied default and reports a warning the
// caller can log and count.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading a single configuration value. When
// FallbackApplied is true the Value is the default and Warnings explains
// what was wrong with the environment value.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func loaded[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fellBack[T any](def T, key, raw string, reason error) Result[T] {
	warning := fmt.Sprintf("invalid %s=%q: %v, using default %v", key, raw, reason, def)
	return Result[T]{Value: def, Warnings: []string{warning}, FallbackApplied: true}
}

// LoadEnvString returns the environment value for key, or def when the
// variable is unset or empty. No validation is applied.
func LoadEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback loads a string and runs it through validate.
// A validation failure falls back to def with a warning. An unset
// variable silently uses def. A nil validate accepts anything.
func LoadEnvWithFallback(key, def string, validate func(string) error) Result[string] {
	raw := os.Getenv(key)
	if raw == "" {
		return loaded(def)
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			return fellBack(def, key, raw, err)
		}
	}
	return loaded(raw)
}

// LoadEnvDuration loads a Go duration string ("30s", "1h30m"). Parse or
// validation failures fall back to def with a warning.
func LoadEnvDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	raw := os.Getenv(key)
	if raw == "" {
		return loaded(def)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fellBack(def, key, raw, err)
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return fellBack(def, key, raw, err)
		}
	}
	return loaded(d)
}

// LoadEnvInt loads a base-10 integer. Parse or validation failures fall
// back to def with a warning.
func LoadEnvInt(key string, def int, validate func(int) error) Result[int] {
	raw := os.Getenv(key)
	if raw == "" {
		return loaded(def)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fellBack(def, key, raw, fmt.Errorf("not an integer"))
	}
	if validate != nil {
		if err := validate(n); err != nil {
			return fellBack(def, key, raw, err)
		}
	}
	return loaded(n)
}

// LoadEnvBool loads a boolean. Accepted spellings are those of
// strconv.ParseBool ("1", "t", "true", "0", "f", "false" in any of the
// usual casings); anything else falls back to def with a warning.
func LoadEnvBool(key string, def bool) Result[bool] {
	raw := os.Getenv(key)
	if raw == "" {
		return loaded(def)
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fellBack(def, key, raw, fmt.Errorf("not a boolean"))
	}
	return loaded(b)
}
