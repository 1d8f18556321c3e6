package domain

import (
	"errors"
	"fmt"
)

// ErrPlanDeclined signals the user rejected a plan at the approval stage.
// No step has executed when this error is returned.
var ErrPlanDeclined = errors.New("plan declined by user")

// ErrStepDeclined signals the user rejected an individual step inside an
// approved sequence.
var ErrStepDeclined = errors.New("step declined by user")

// ConfigError marks an unreadable pattern or configuration source. Callers
// degrade to defaults instead of aborting, but the condition is never silent.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config source %s unreadable: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CorrectionExhaustedError is returned when the auto-correct loop used up its
// attempt budget without producing a succeeding command. It aborts the current
// plan only, never the process.
type CorrectionExhaustedError struct {
	Command  string
	Attempts int
	Stderr   string
}

func (e *CorrectionExhaustedError) Error() string {
	return fmt.Sprintf("auto-correct exhausted after %d attempts for %q", e.Attempts, e.Command)
}
