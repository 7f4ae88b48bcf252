package personas

import (
	"errors"
	"fmt"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrConfigInvalid   = errors.New("invalid persona configuration")
	ErrConfigNotFound  = errors.New("configuration file not found")
)

// ConfigError represents a configuration-related error
type ConfigError struct {
	File    string
	Section string
	Field   string
	Cause   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s[%s].%s: %v",
		e.File, e.Section, e.Field, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error
func NewConfigError(file, section, field string, cause error) *ConfigError {
	return &ConfigError{
		File:    file,
		Section: section,
		Field:   field,
		Cause:   cause,
	}
}
