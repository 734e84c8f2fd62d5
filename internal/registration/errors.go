package registration

import (
	"fmt"
	"strings"
)

// ValidationError lists the required fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// IntegrationError wraps a failed copy to an external sink. It is logged,
// never returned to the registrant.
type IntegrationError struct {
	Sink string
	Err  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("mirror to %s: %v", e.Sink, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }
