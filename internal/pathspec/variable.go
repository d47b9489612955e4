package pathspec

import (
	"fmt"
	"regexp"
	"time"
)

var variableNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Variable declares a typed, named placeholder a template may reference.
// Variables are value objects: updates replace the whole declaration under
// the same name rather than mutating it in place.
type Variable struct {
	Name              string
	Description       string
	Type              VariableType
	Required          bool
	Default           any
	AllowedValues     []any
	ValidationPattern string
}

// NewVariable returns the permissive declaration used for names discovered
// in a template without an explicit declaration: a required string.
func NewVariable(name string) (Variable, error) {
	v := Variable{Name: name, Type: VariableString, Required: true}
	if err := v.Validate(); err != nil {
		return Variable{}, err
	}
	return v, nil
}

// Validate checks the declaration itself: the name grammar, that enum
// variables carry allowed values, and that a declared default satisfies the
// variable's own constraints.
func (v Variable) Validate() error {
	if !variableNamePattern.MatchString(v.Name) {
		return fmt.Errorf("variable name %q must be uppercase letters, digits, and underscores, starting with a letter", v.Name)
	}
	if _, err := ParseVariableType(string(v.Type)); err != nil {
		return fmt.Errorf("variable %q: %w", v.Name, err)
	}
	if v.Type == VariableEnum && len(v.AllowedValues) == 0 {
		return fmt.Errorf("enum variable %q must declare allowed values", v.Name)
	}
	if v.ValidationPattern != "" {
		if _, err := regexp.Compile(v.ValidationPattern); err != nil {
			return fmt.Errorf("variable %q: invalid validation pattern: %w", v.Name, err)
		}
	}
	if v.Default != nil {
		if err := v.ValidateValue(v.Default); err != nil {
			return fmt.Errorf("variable %q: default value rejected: %w", v.Name, err)
		}
	}
	return nil
}

// ValidateValue checks a binding value against this variable's allowed
// values, validation pattern, and type.
func (v Variable) ValidateValue(value any) error {
	if len(v.AllowedValues) > 0 && !containsValue(v.AllowedValues, value) {
		return &VariableValueError{Variable: v.Name, Value: value, Reason: "not in allowed values"}
	}
	if v.ValidationPattern != "" {
		if s, ok := value.(string); ok {
			// Patterns match from the start of the value, like the
			// persisted-document contract promises.
			re, err := regexp.Compile(`\A(?:` + v.ValidationPattern + `)`)
			if err != nil {
				return &VariableValueError{Variable: v.Name, Value: value, Reason: "invalid validation pattern"}
			}
			if !re.MatchString(s) {
				return &VariableValueError{
					Variable: v.Name,
					Value:    value,
					Reason:   fmt.Sprintf("does not match pattern %q", v.ValidationPattern),
				}
			}
		}
	}

	switch v.Type {
	case VariableInteger:
		if _, ok := normalizeInt(value); !ok {
			return &VariableValueError{Variable: v.Name, Value: value, Reason: "not an integer"}
		}
	case VariableBoolean:
		if _, ok := value.(bool); !ok {
			return &VariableValueError{Variable: v.Name, Value: value, Reason: "not a boolean"}
		}
	case VariableDate:
		switch value.(type) {
		case time.Time, string:
		default:
			return &VariableValueError{Variable: v.Name, Value: value, Reason: "not a date"}
		}
	case VariableEnum:
		if len(v.AllowedValues) == 0 {
			return &VariableValueError{Variable: v.Name, Value: value, Reason: "enum variable has no allowed values"}
		}
	}
	return nil
}

// clone returns a copy safe to hold across template mutations.
func (v Variable) clone() Variable {
	out := v
	if len(v.AllowedValues) > 0 {
		out.AllowedValues = append([]any(nil), v.AllowedValues...)
	}
	return out
}

func containsValue(allowed []any, value any) bool {
	for _, candidate := range allowed {
		if valuesEqual(candidate, value) {
			return true
		}
	}
	return false
}

// valuesEqual compares binding values loosely across integer widths so a
// TOML-decoded int64 matches a caller-supplied int.
func valuesEqual(a, b any) bool {
	if ai, ok := normalizeInt(a); ok {
		if bi, ok := normalizeInt(b); ok {
			return ai == bi
		}
		return false
	}
	return a == b
}

func normalizeInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
