// Package config holds the fail-open environment loaders and validators shared by
// every component configuration (worker, favicon, search, database).
//
// Loaders never return errors: an unset variable yields the default silently, an
// unparsable or invalid one yields the default plus a warning in ConfigLoadResult.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
//
// Example:
//
//	result := LoadEnvDuration("WORKER_RUN_TIMEOUT", 30*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    for _, warning := range result.Warnings {
//	        logger.Warn("configuration warning", slog.String("warning", warning))
//	    }
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func ok(v interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: v}
}

func fallback(v interface{}, warning string) ConfigLoadResult {
	return ConfigLoadResult{Value: v, Warnings: []string{warning}, FallbackApplied: true}
}

// LoadEnvString returns the variable or defaultValue when unset. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string and validates it.
//
// Warning format:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ok(defaultValue)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%s'", envKey, value, err, defaultValue))
		}
	}

	return ok(value)
}

// LoadEnvDuration loads a Go duration string ("30s", "5m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ok(defaultValue)
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'", envKey, valueStr, err, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'", envKey, valueStr, err, defaultValue))
		}
	}

	return ok(parsed)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ok(defaultValue)
	}

	parsed, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid integer format, falling back to default '%d'", envKey, valueStr, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%d'", envKey, valueStr, err, defaultValue))
		}
	}

	return ok(parsed)
}

// LoadEnvInt64 loads a base-10 int64, used for byte sizes.
func LoadEnvInt64(envKey string, defaultValue int64, validator func(int64) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ok(defaultValue)
	}

	parsed, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return fallback(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid integer format, falling back to default '%d'", envKey, valueStr, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%d'", envKey, valueStr, err, defaultValue))
		}
	}

	return ok(parsed)
}

// LoadEnvFloat loads a float64, used for rates.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ok(defaultValue)
	}

	parsed, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid number format, falling back to default '%g'", envKey, valueStr, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%g'", envKey, valueStr, err, defaultValue))
		}
	}

	return ok(parsed)
}

// LoadEnvBool loads a boolean.
// True values: "1", "t", "T", "true", "TRUE", "True"; false values mirror them.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ok(defaultValue)
	}

	switch valueStr {
	case "1", "t", "T", "true", "TRUE", "True":
		return ok(true)
	case "0", "f", "F", "false", "FALSE", "False":
		return ok(false)
	default:
		return fallback(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid boolean format, expected 'true' or 'false', falling back to default '%t'",
			envKey, valueStr, defaultValue))
	}
}
