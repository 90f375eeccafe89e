package jobspec

import "fmt"

// MissingFieldError reports a required field absent from a fetched
// configuration document. Assembly fails before any job is launched.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field in the configuration file: %s", e.Field)
}

func requireField(name, value string) error {
	if value == "" {
		return &MissingFieldError{Field: name}
	}
	return nil
}
