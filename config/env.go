package config

import (
	"fmt"
	"os"
	"strconv"
)

// String returns the value of the environment variable or the fallback when unset.
func String(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	return v
}

// RequiredString returns the value of the environment variable or an error when unset.
func RequiredString(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}

	return v, nil
}

// Int returns the integer value of the environment variable or the fallback
// when unset or not a number.
func Int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return parsed
}
