package schema

import (
	"fmt"
	"strings"
)

// SchemaError means the field declarations themselves are structurally
// invalid. It is fatal to the whole run: no record type exists to validate
// against.
type SchemaError struct {
	Field  string // offending declaration name, may be empty
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Reason)
}

func schemaErrorf(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// FieldError is one field's normalization failure.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// ValidationError aggregates every failing field of one document, in
// declaration order (unknown keys last). It is fatal to that document only.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Error()
	}
	return "validation failed for " + strings.Join(msgs, "; ")
}
