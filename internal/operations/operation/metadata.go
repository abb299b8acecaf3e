package operation

import (
	"fmt"

	"github.com/google/uuid"
)

// Metadata is the descriptive text bundle attached to an operation.
// Implementers populate the exported fields before Run is invoked; every
// field is required and checked by Validate before anything else happens.
// The bundle is treated as read-only once the run entrypoint starts.
type Metadata struct {
	// Title is the short human-readable name of the operation.
	Title string
	// Status is the line shown while the operation is active.
	Status string
	// SuccessTitle and SuccessMessage are shown on a successful outcome.
	SuccessTitle   string
	SuccessMessage string
	// FailureTitle and FailureMessage are shown on a failed outcome.
	FailureTitle   string
	FailureMessage string
	// OperationInformation is a free-form line recorded when execution starts.
	OperationInformation string

	id string
}

// NewMetadata creates an empty metadata bundle with a generated identifier.
func NewMetadata() *Metadata {
	return &Metadata{id: uuid.NewString()}
}

// ID returns the operation identifier generated at construction.
func (m *Metadata) ID() string {
	return m.id
}

// ConfigError reports a required metadata field that was left empty.
// It is a fatal pre-flight error: the run entrypoint raises it before any
// state transition, enqueue, or log line.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("operation metadata: required field %s is empty", e.Field)
}

// Validate checks every required field for non-emptiness and returns a
// ConfigError naming the first empty field found.
func (m *Metadata) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"Title", m.Title},
		{"Status", m.Status},
		{"SuccessTitle", m.SuccessTitle},
		{"SuccessMessage", m.SuccessMessage},
		{"FailureTitle", m.FailureTitle},
		{"FailureMessage", m.FailureMessage},
		{"OperationInformation", m.OperationInformation},
	}
	for _, field := range required {
		if field.value == "" {
			return &ConfigError{Field: field.name}
		}
	}
	return nil
}
