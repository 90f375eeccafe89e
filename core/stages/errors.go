package stages

import (
	"errors"
	"fmt"
)

// ErrNoApprovedModel means a stage required an approved model package and
// the group holds none
var ErrNoApprovedModel = errors.New("no approved model packages found")

// ValidationError reports a required field absent from a stage's request
// payload. Surfaced as a bad-input result, never retried.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s not found in the event payload", e.Field)
}

func requireEventField(name, value string) error {
	if value == "" {
		return &ValidationError{Field: name}
	}
	return nil
}
