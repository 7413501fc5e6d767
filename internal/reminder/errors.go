package reminder

import (
	"errors"
	"fmt"
)

// ErrScheduleConfig marks a schedule whose stored fields cannot be interpreted.
var ErrScheduleConfig = errors.New("schedule config error")

// ConfigError describes which schedule field is malformed
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schedule %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrScheduleConfig, e.Err}
}
