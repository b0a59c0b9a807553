package ai

import (
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
	ErrSchemaViolation     = errors.New("ai response violates structured output schema")
)

// SchemaError reports a model response that parsed as JSON but does not match
// the requested shape. It matches ErrSchemaViolation with errors.Is.
type SchemaError struct {
	Shape string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSchemaViolation, e.Shape, e.Err)
}

func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaViolation, e.Err}
}
