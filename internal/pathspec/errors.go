package pathspec

import (
	"fmt"
	"strings"
)

// Issue records one validation failure for a named template or slot.
type Issue struct {
	Name   string
	Reason string
}

func (i Issue) String() string {
	return i.Name + ": " + i.Reason
}

// InvalidTemplateError reports a template that failed its self-check,
// such as a referenced variable without a declaration.
type InvalidTemplateError struct {
	Template string
	Reason   string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template %q: %s", e.Template, e.Reason)
}

// ErrorKind classifies the failure for status mapping.
func (e *InvalidTemplateError) ErrorKind() string { return "validation" }

// VariableResolutionError reports a required variable with no binding and
// no default at format time.
type VariableResolutionError struct {
	Variable string
	Template string
}

func (e *VariableResolutionError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("cannot resolve variable %q", e.Variable)
	}
	return fmt.Sprintf("cannot resolve variable %q in template %q", e.Variable, e.Template)
}

func (e *VariableResolutionError) ErrorKind() string { return "resolution" }

// VariableValueError reports a binding that failed a variable's type,
// allowed-values, or pattern constraint.
type VariableValueError struct {
	Variable string
	Value    any
	Reason   string
}

func (e *VariableValueError) Error() string {
	return fmt.Sprintf("invalid value %v for variable %q: %s", e.Value, e.Variable, e.Reason)
}

func (e *VariableValueError) ErrorKind() string { return "validation" }

// PathResolutionError reports a failed forward resolution or conversion.
// EntityType and DataType are strings so analysis failures can report
// "unknown" before a slot has been identified.
type PathResolutionError struct {
	EntityType string
	DataType   string
	Reason     string
	Err        error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve path for %s/%s: %s", e.EntityType, e.DataType, e.Reason)
}

func (e *PathResolutionError) Unwrap() error { return e.Err }

func (e *PathResolutionError) ErrorKind() string { return "resolution" }

// StudioMappingError reports aggregate-level mapping validation failures.
type StudioMappingError struct {
	Studio string
	Issues []Issue
}

func (e *StudioMappingError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("studio mapping %q validation failed: %s", e.Studio, strings.Join(parts, ", "))
}

func (e *StudioMappingError) ErrorKind() string { return "validation" }

// ContextError reports caller-supplied context inconsistent with engine
// expectations.
type ContextError struct {
	Message string
}

func (e *ContextError) Error() string { return e.Message }

func (e *ContextError) ErrorKind() string { return "validation" }
