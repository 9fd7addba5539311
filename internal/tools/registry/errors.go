package registry

import (
	"fmt"
	"strings"
)

// NotFoundError is returned for an invocation of a tool that is not registered.
type NotFoundError struct {
	ToolName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.ToolName)
}

// FieldError describes why one argument was rejected.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Reason
}

// ValidationError lists every argument of a call that failed validation,
// in parameter declaration order.
type ValidationError struct {
	Tool   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, strings.Join(parts, "; "))
}

// FieldNames returns the names of the rejected arguments.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// NewValidationError reports a single invalid argument. Handlers use it for
// checks that go beyond the declared parameter type, such as date formats.
func NewValidationError(tool, field, reason string) *ValidationError {
	return &ValidationError{Tool: tool, Fields: []FieldError{{Field: field, Reason: reason}}}
}
