package config

import "fmt"

// ConfigError describes an invalid configuration value. It is returned by
// Config.Validate and by the dataset registry, always before any network
// activity, and is never retried.
type ConfigError struct {
	// Field is the flag or profile key that failed validation.
	Field string

	// Reason is a human-readable description of the constraint.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
