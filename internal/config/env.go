// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/seacam/internal/log"
)

// Environment keys. All carry the SEACAM_ prefix.
const (
	EnvDataDir          = "SEACAM_DATA"
	EnvLogLevel         = "SEACAM_LOG_LEVEL"
	EnvListen           = "SEACAM_LISTEN"
	EnvRateLimit        = "SEACAM_RATE_LIMIT"
	EnvStoreBackend     = "SEACAM_STORE_BACKEND"
	EnvCaptureDevice    = "SEACAM_CAPTURE_DEVICE"
	EnvImageFormat      = "SEACAM_IMAGE_FORMAT"
	EnvMediaDir         = "SEACAM_MEDIA_DIR"
	EnvMinFreeMB        = "SEACAM_CAPTURE_MIN_FREE_MB"
	EnvSleepOverhead    = "SEACAM_SLEEP_OVERHEAD"
	EnvNotifyThrottle   = "SEACAM_NOTIFY_THROTTLE"
	EnvNotifyHistory    = "SEACAM_NOTIFY_HISTORY"
	EnvStillFailures    = "SEACAM_STILL_FAILURE_THRESHOLD"
	EnvStillBreakerWait = "SEACAM_STILL_BREAKER_RESET"
)

// ParseString reads a string from environment variable or returns default value.
// An empty variable counts as unset.
func ParseString(key, defaultValue string) string {
	logger := log.WithComponent("config")
	if value, ok := os.LookupEnv(key); ok && value != "" {
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
		return value
	}
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Int("value", i).
		Str("source", "environment").
		Msg("using environment variable")
	return i
}

// ParseDuration reads a duration from environment variable in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Dur("value", d).
		Str("source", "environment").
		Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}
