package sched

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned for operations on unknown or removed job IDs.
var ErrJobNotFound = errors.New("job not found")

// ValidationError rejects a malformed add request before anything is
// persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schedule: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schedule: %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, v ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, v...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
