package env

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEnv indicates a simulation ID that is not registered.
	ErrUnknownEnv = errors.New("env: unknown simulation")

	// ErrClosed indicates a call on a simulation after Close.
	ErrClosed = errors.New("env: simulation closed")

	// ErrInvalidAction indicates an action index outside the action space.
	ErrInvalidAction = errors.New("env: invalid action")

	// ErrNotReset indicates Step or Render before the first Reset.
	ErrNotReset = errors.New("env: reset has not been called")
)

// ConfigError reports a problem detected while constructing a simulation or
// the viewer around it. It is always fatal.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
