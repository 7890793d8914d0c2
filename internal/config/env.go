package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by LoadEnv.
const (
	EnvNamespace          = "HELLOWORLD_NAMESPACE"
	EnvResourceName       = "HELLOWORLD_RESOURCE_NAME"
	EnvStabilizeDelay     = "HELLOWORLD_STABILIZE_DELAY"
	EnvVerifyDelay        = "HELLOWORLD_VERIFY_DELAY"
	EnvWatchRetryDelay    = "HELLOWORLD_WATCH_RETRY_DELAY"
	EnvBootstrapWorkers   = "HELLOWORLD_BOOTSTRAP_WORKERS"
	EnvSerializeBootstrap = "HELLOWORLD_SERIALIZE_BOOTSTRAP"
)

// LoadEnv overlays environment variables on top of the defaults.
// If an environment variable is not set or invalid, the default value is used.
//
// Environment Variables:
//   - HELLOWORLD_NAMESPACE (default: default)
//   - HELLOWORLD_RESOURCE_NAME (default: hello-world-example)
//   - HELLOWORLD_STABILIZE_DELAY (default: 10s)
//   - HELLOWORLD_VERIFY_DELAY (default: 10s)
//   - HELLOWORLD_WATCH_RETRY_DELAY (default: 5s)
//   - HELLOWORLD_BOOTSTRAP_WORKERS (default: 1)
//   - HELLOWORLD_SERIALIZE_BOOTSTRAP (default: false)
func LoadEnv() *Operator {
	return &Operator{
		Namespace:          parseString(EnvNamespace, DefaultNamespace),
		ResourceName:       parseString(EnvResourceName, DefaultResourceName),
		StabilizeDelay:     parseDuration(EnvStabilizeDelay, DefaultStabilizeDelay),
		VerifyDelay:        parseDuration(EnvVerifyDelay, DefaultVerifyDelay),
		WatchRetryDelay:    parseDuration(EnvWatchRetryDelay, DefaultWatchRetryDelay),
		BootstrapWorkers:   parseInt(EnvBootstrapWorkers, DefaultBootstrapWorkers),
		SerializeBootstrap: parseBool(EnvSerializeBootstrap, false),
	}
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

func parseBool(envVar string, defaultVal bool) bool {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return b
}
