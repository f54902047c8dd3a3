// Package config holds small, dependency-free helpers for reading typed
// settings from the environment. Invalid values never fail startup here:
// the default is kept and a warning is logged so the caller's Validate
// step decides what is fatal.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the parsed value of key, or defaultValue when the variable is
// unset, empty, or unparsable.
func lookup[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return defaultValue
	}

	value, err := parse(raw)
	if err != nil {
		slog.Warn("invalid "+kind+" value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvString returns the variable or defaultValue when it is unset or blank.
//
//	staticDir := GetEnvString("STATIC_DIR", "public")
func GetEnvString(key, defaultValue string) string {
	return lookup(key, defaultValue, "string", func(s string) (string, error) { return s, nil })
}

// GetEnvInt returns the variable parsed as a base-10 int.
func GetEnvInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, "integer", strconv.Atoi)
}

// GetEnvInt64 returns the variable parsed as a base-10 int64. Byte limits use this.
func GetEnvInt64(key string, defaultValue int64) int64 {
	return lookup(key, defaultValue, "integer", func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// GetEnvFloat returns the variable parsed as a float64.
func GetEnvFloat(key string, defaultValue float64) float64 {
	return lookup(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool accepts the strconv.ParseBool spellings ("1", "t", "true", "0", "f", "false", ...).
//
//	enabled := GetEnvBool("RATELIMIT_ENABLED", false)
func GetEnvBool(key string, defaultValue bool) bool {
	return lookup(key, defaultValue, "boolean", strconv.ParseBool)
}

// GetEnvDuration accepts time.ParseDuration syntax such as "30s" or "1m30s".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return lookup(key, defaultValue, "duration", time.ParseDuration)
}

// GetEnvStringList splits a comma-separated variable, trimming and dropping
// empty parts. A variable with no usable parts yields defaultValue.
//
//	// TRUSTED_PROXIES="10.0.0.0/8, 192.168.0.0/16"
//	proxies := GetEnvStringList("TRUSTED_PROXIES", nil)
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
