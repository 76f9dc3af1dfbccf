package config

import (
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LANGFUSE"

// Environment variable names for configuration.
const (
	EnvPublicKey     = "LANGFUSE_PUBLIC_KEY"
	EnvSecretKey     = "LANGFUSE_SECRET_KEY"
	EnvBaseURL       = "LANGFUSE_BASE_URL"
	EnvHost          = "LANGFUSE_HOST"
	EnvRegion        = "LANGFUSE_REGION"
	EnvDebug         = "LANGFUSE_DEBUG"
	EnvBatchMode     = "LANGFUSE_BATCH_MODE"
	EnvFlushInterval = "LANGFUSE_FLUSH_INTERVAL"
	EnvBatchSize     = "LANGFUSE_BATCH_SIZE"
	EnvEnvironment   = "LANGFUSE_ENVIRONMENT"
)

// GetEnvString returns the value of an environment variable or a default.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool parses a boolean variable, returning defaultValue when it is
// unset or malformed.
func GetEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvInt parses an integer variable, returning defaultValue when it is
// unset or malformed.
func GetEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvDuration parses a duration such as "2s". A bare number is read as
// seconds.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// GetEnvRegion returns the region from environment or default.
func GetEnvRegion(defaultRegion Region) Region {
	if v := os.Getenv(EnvRegion); v != "" {
		return Region(v)
	}
	return defaultRegion
}
