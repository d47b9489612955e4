package pathspec

import (
	"fmt"
	"sort"
	"time"
)

// Group is a named collection of related templates, typically all the
// conventions for one studio or project. It is the consistency boundary
// for template name uniqueness, inheritance linking, and safe deletion.
type Group struct {
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	templates map[string]*Template
}

// TemplateSpec carries the inputs for creating a template inside a group.
type TemplateSpec struct {
	Name        string
	Template    string
	Description string
	Variables   []Variable
	Parent      string
	Inheritance Inheritance
}

// TemplateUpdate carries the optional fields of a template update. Nil
// fields keep the current value. A non-nil Variables slice replaces the
// declaration set wholesale; names still referenced by the template are
// then re-declared with permissive defaults.
type TemplateUpdate struct {
	Template    *string
	Description *string
	Variables   []Variable
	ReplaceVars bool
	Parent      *string
	Inheritance *Inheritance
}

// NewGroup creates an empty template group.
func NewGroup(name, description string) *Group {
	now := time.Now().UTC()
	return &Group{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		templates:   make(map[string]*Template),
	}
}

// Template looks up a template by name.
func (g *Group) Template(name string) (*Template, error) {
	t, ok := g.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found in group %q", name, g.Name)
	}
	return t, nil
}

// Templates returns the group's templates sorted by name.
func (g *Group) Templates() []*Template {
	out := make([]*Template, 0, len(g.templates))
	for _, t := range g.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddTemplate registers an already-constructed template, enforcing name
// uniqueness. Used by stores when rehydrating a group document.
func (g *Group) AddTemplate(t *Template) error {
	if _, ok := g.templates[t.Name]; ok {
		return fmt.Errorf("template %q already exists in group %q", t.Name, g.Name)
	}
	g.templates[t.Name] = t
	g.touch()
	return nil
}

// CreateTemplate builds, validates, and registers a new template. The
// parent, when named, must already exist in this group.
func (g *Group) CreateTemplate(spec TemplateSpec) (*Template, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if _, ok := g.templates[spec.Name]; ok {
		return nil, fmt.Errorf("template %q already exists in group %q", spec.Name, g.Name)
	}

	t, err := NewTemplate(spec.Name, spec.Template, spec.Variables...)
	if err != nil {
		return nil, err
	}
	t.Description = spec.Description

	if spec.Parent != "" {
		parent, ok := g.templates[spec.Parent]
		if !ok {
			return nil, fmt.Errorf("parent template %q not found in group %q", spec.Parent, g.Name)
		}
		mode := spec.Inheritance
		if mode == "" {
			mode = InheritNone
		}
		if err := t.SetParent(parent, mode); err != nil {
			return nil, err
		}
	} else if spec.Inheritance != "" && spec.Inheritance != InheritNone {
		return nil, fmt.Errorf("inheritance mode %q requires a parent template", spec.Inheritance)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	g.templates[t.Name] = t
	g.touch()
	return t, nil
}

// UpdateTemplate applies an update to a named template. The update is
// staged on a copy and validated before it is swapped in, so a failed
// update leaves the template in its prior valid state.
func (g *Group) UpdateTemplate(name string, update TemplateUpdate) (*Template, error) {
	current, ok := g.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found in group %q", name, g.Name)
	}

	staged := current.clone()

	if update.Template != nil {
		if err := staged.SetRaw(*update.Template); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		staged.Description = *update.Description
	}
	if update.ReplaceVars {
		staged.variables = make(map[string]Variable)
		for _, v := range update.Variables {
			if err := staged.AddVariable(v); err != nil {
				return nil, err
			}
		}
		if err := staged.declareReferenced(); err != nil {
			return nil, err
		}
	}
	if update.Parent != nil {
		if *update.Parent == "" {
			staged.parent = nil
			staged.Inheritance = InheritNone
		} else {
			parent, ok := g.templates[*update.Parent]
			if !ok {
				return nil, fmt.Errorf("parent template %q not found in group %q", *update.Parent, g.Name)
			}
			mode := staged.Inheritance
			if update.Inheritance != nil {
				mode = *update.Inheritance
			}
			if err := staged.SetParent(parent, mode); err != nil {
				return nil, err
			}
		}
	}
	if update.Inheritance != nil {
		if _, err := ParseInheritance(string(*update.Inheritance)); err != nil {
			return nil, err
		}
		staged.Inheritance = *update.Inheritance
	}

	if err := staged.Validate(); err != nil {
		return nil, err
	}

	// Swap the staged state into the existing entity so templates whose
	// parent pointer targets it keep observing the update.
	staged.touch()
	*current = *staged
	g.touch()
	return current, nil
}

// DeleteTemplate removes a template. A template still serving as another
// template's inheritance parent may not be deleted.
func (g *Group) DeleteTemplate(name string) error {
	if _, ok := g.templates[name]; !ok {
		return fmt.Errorf("template %q not found in group %q", name, g.Name)
	}
	for _, other := range g.templates {
		if other.Name == name {
			continue
		}
		if parent := other.Parent(); parent != nil && parent.Name == name {
			return fmt.Errorf("template %q cannot be deleted: it is the parent of %q", name, other.Name)
		}
	}
	delete(g.templates, name)
	g.touch()
	return nil
}

// ValidateAll audits every template and returns an issue per failure
// without raising, for batch review.
func (g *Group) ValidateAll() []Issue {
	var issues []Issue
	for _, t := range g.Templates() {
		if err := t.Validate(); err != nil {
			issues = append(issues, Issue{Name: t.Name, Reason: err.Error()})
		}
	}
	return issues
}

func (g *Group) touch() {
	g.UpdatedAt = time.Now().UTC()
}
