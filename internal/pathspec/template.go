package pathspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Template is a named folder template: a raw string, its parsed tokens,
// the variables it declares, and an optional inheritance parent.
type Template struct {
	Name        string
	Description string
	Inheritance Inheritance
	CreatedAt   time.Time
	UpdatedAt   time.Time

	raw       string
	parsed    ParsedTemplate
	variables map[string]Variable
	parent    *Template
}

// NewTemplate parses raw, registers the supplied variable declarations,
// and auto-declares any referenced name left undeclared as a required
// string variable.
func NewTemplate(name, raw string, vars ...Variable) (*Template, error) {
	now := time.Now().UTC()
	t := &Template{
		Name:        name,
		Inheritance: InheritNone,
		CreatedAt:   now,
		UpdatedAt:   now,
		raw:         raw,
		parsed:      Parse(raw),
		variables:   make(map[string]Variable),
	}
	for _, v := range vars {
		if err := t.AddVariable(v); err != nil {
			return nil, err
		}
	}
	if err := t.declareReferenced(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) declareReferenced() error {
	for _, name := range t.parsed.Variables() {
		if _, ok := t.variables[name]; ok {
			continue
		}
		v, err := NewVariable(name)
		if err != nil {
			return &InvalidTemplateError{Template: t.Name, Reason: err.Error()}
		}
		t.variables[name] = v
	}
	return nil
}

// Raw returns the template's own raw string, ignoring inheritance.
func (t *Template) Raw() string { return t.raw }

// SetRaw replaces the raw string, re-parses it, and auto-declares any
// newly referenced variables.
func (t *Template) SetRaw(raw string) error {
	t.raw = raw
	t.parsed = Parse(raw)
	if err := t.declareReferenced(); err != nil {
		return err
	}
	t.touch()
	return nil
}

// Tokens returns the parsed token sequence.
func (t *Template) Tokens() []Token { return t.parsed.Tokens }

// ReferencedVariables returns the sorted names the token sequence uses.
func (t *Template) ReferencedVariables() []string { return t.parsed.Variables() }

// Variables returns the declared variables sorted by name.
func (t *Template) Variables() []Variable {
	out := make([]Variable, 0, len(t.variables))
	for _, v := range t.variables {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Variable looks up a declaration by name.
func (t *Template) Variable(name string) (Variable, bool) {
	v, ok := t.variables[name]
	return v, ok
}

// AddVariable registers a declaration. Duplicate names are rejected.
func (t *Template) AddVariable(v Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if _, ok := t.variables[v.Name]; ok {
		return fmt.Errorf("variable %q already exists in template %q", v.Name, t.Name)
	}
	t.variables[v.Name] = v.clone()
	t.touch()
	return nil
}

// RemoveVariable drops a declaration. A variable still referenced by the
// token sequence may not be removed.
func (t *Template) RemoveVariable(name string) error {
	if _, ok := t.variables[name]; !ok {
		return fmt.Errorf("variable %q not found in template %q", name, t.Name)
	}
	if t.parsed.References(name) {
		return fmt.Errorf("cannot remove variable %q: still referenced by template %q", name, t.Name)
	}
	delete(t.variables, name)
	t.touch()
	return nil
}

// UpdateVariable replaces an existing declaration under the same name.
func (t *Template) UpdateVariable(v Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if _, ok := t.variables[v.Name]; !ok {
		return fmt.Errorf("variable %q not found in template %q", v.Name, t.Name)
	}
	t.variables[v.Name] = v.clone()
	t.touch()
	return nil
}

// Parent returns the inheritance parent, or nil.
func (t *Template) Parent() *Template { return t.parent }

// SetParent assigns the inheritance parent and mode. The new parent's
// ancestor chain must not already include this template; the guard keeps
// inheritance acyclic by construction.
func (t *Template) SetParent(parent *Template, mode Inheritance) error {
	if _, err := ParseInheritance(string(mode)); err != nil {
		return err
	}
	for ancestor := parent; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == t || ancestor.Name == t.Name {
			return &InvalidTemplateError{
				Template: t.Name,
				Reason:   fmt.Sprintf("parent %q would create an inheritance cycle", parent.Name),
			}
		}
	}
	t.parent = parent
	t.Inheritance = mode
	t.touch()
	return nil
}

// Validate checks the template invariant: every variable name the token
// sequence references has a declaration.
func (t *Template) Validate() error {
	for _, name := range t.parsed.Variables() {
		if _, ok := t.variables[name]; !ok {
			return &InvalidTemplateError{
				Template: t.Name,
				Reason:   fmt.Sprintf("variable %q is used but not declared", name),
			}
		}
	}
	return nil
}

// Format substitutes bindings into the token sequence and returns the
// resulting path. Supplied values are validated against their
// declarations, defaults fill the gaps, and a required variable with
// neither binding nor default fails with a VariableResolutionError.
// Bindings for names the template never references are ignored.
func (t *Template) Format(bindings map[string]any) (string, error) {
	return formatTokens(t.Name, t.parsed.Tokens, t.variables, bindings)
}

// FormatEffective formats the inheritance-expanded token sequence.
// Declarations are collected along the parent chain, with this template's
// declarations shadowing the parent's.
func (t *Template) FormatEffective(bindings map[string]any) (string, error) {
	if t.parent == nil || t.Inheritance != InheritExtend {
		return t.Format(bindings)
	}
	parsed := Parse(t.EffectiveTemplate())
	return formatTokens(t.Name, parsed.Tokens, t.effectiveVariables(), bindings)
}

// effectiveVariables merges declarations down the parent chain.
func (t *Template) effectiveVariables() map[string]Variable {
	merged := make(map[string]Variable)
	var walk func(*Template, map[*Template]struct{})
	walk = func(node *Template, seen map[*Template]struct{}) {
		if node == nil {
			return
		}
		if _, ok := seen[node]; ok {
			return
		}
		seen[node] = struct{}{}
		walk(node.parent, seen)
		for name, v := range node.variables {
			merged[name] = v
		}
	}
	walk(t, make(map[*Template]struct{}))
	return merged
}

func formatTokens(templateName string, tokens []Token, variables map[string]Variable, bindings map[string]any) (string, error) {
	resolved := make(map[string]any, len(variables))
	for name, v := range variables {
		if value, ok := bindings[name]; ok {
			if err := v.ValidateValue(value); err != nil {
				return "", err
			}
			resolved[name] = value
			continue
		}
		if v.Default != nil {
			resolved[name] = v.Default
			continue
		}
		if v.Required {
			return "", &VariableResolutionError{Variable: name, Template: templateName}
		}
	}

	var b strings.Builder
	for _, token := range tokens {
		switch token.Kind {
		case TokenLiteral:
			b.WriteString(token.Content)
		case TokenVariable:
			value, ok := resolved[token.Content]
			if !ok {
				return "", &VariableResolutionError{Variable: token.Content, Template: templateName}
			}
			b.WriteString(bindingString(value))
		}
	}
	return b.String(), nil
}

// EffectiveTemplate resolves the inheritance-expanded raw string. NONE and
// OVERRIDE use this template's raw string unchanged; EXTEND appends it to
// the parent's effective string with a single separator between them.
func (t *Template) EffectiveTemplate() string {
	return t.effective(make(map[*Template]struct{}))
}

func (t *Template) effective(seen map[*Template]struct{}) string {
	// SetParent keeps chains acyclic; the visited set is a backstop for
	// hand-assembled graphs.
	if _, ok := seen[t]; ok {
		return t.raw
	}
	seen[t] = struct{}{}

	if t.parent == nil || t.Inheritance != InheritExtend {
		return t.raw
	}
	parent := t.parent.effective(seen)
	return strings.TrimSuffix(parent, "/") + "/" + strings.TrimPrefix(t.raw, "/")
}

// clone copies the template and its variable map. The parent pointer is
// shared; group updates relink it explicitly.
func (t *Template) clone() *Template {
	out := *t
	out.variables = make(map[string]Variable, len(t.variables))
	for name, v := range t.variables {
		out.variables[name] = v.clone()
	}
	return &out
}

func (t *Template) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// bindingString renders a binding value into a path segment.
func bindingString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		if n, ok := normalizeInt(value); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprint(value)
	}
}
