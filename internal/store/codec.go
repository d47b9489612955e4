package store

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"slate/internal/pathspec"
)

// groupDocument is the persisted form of a template group.
type groupDocument struct {
	Name        string             `toml:"name"`
	Description string             `toml:"description,omitempty"`
	CreatedAt   time.Time          `toml:"created_at"`
	UpdatedAt   time.Time          `toml:"updated_at"`
	Templates   []templateDocument `toml:"templates,omitempty"`
}

type templateDocument struct {
	Name        string             `toml:"name"`
	Description string             `toml:"description,omitempty"`
	Template    string             `toml:"template"`
	Parent      string             `toml:"parent,omitempty"`
	Inheritance string             `toml:"inheritance,omitempty"`
	CreatedAt   time.Time          `toml:"created_at"`
	UpdatedAt   time.Time          `toml:"updated_at"`
	Variables   []variableDocument `toml:"variables,omitempty"`
}

type variableDocument struct {
	Name              string `toml:"name"`
	Description       string `toml:"description,omitempty"`
	Type              string `toml:"type"`
	Required          bool   `toml:"required"`
	Default           any    `toml:"default,omitempty"`
	AllowedValues     []any  `toml:"allowed_values,omitempty"`
	ValidationPattern string `toml:"validation_pattern,omitempty"`
}

// mappingDocument is the persisted form of a studio mapping. Keys of
// the mappings table match the pathspec.Slot constants; values are the
// effective raw template strings. Variable declarations are re-derived
// from the placeholders when the document is loaded.
type mappingDocument struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description,omitempty"`
	CreatedAt   time.Time         `toml:"created_at"`
	UpdatedAt   time.Time         `toml:"updated_at"`
	Mappings    map[string]string `toml:"mappings,omitempty"`
}

func encodeGroup(group *pathspec.Group) ([]byte, error) {
	doc := groupDocument{
		Name:        group.Name,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
	for _, tmpl := range group.Templates() {
		doc.Templates = append(doc.Templates, encodeTemplate(tmpl))
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode group %q: %w", group.Name, err)
	}
	return data, nil
}

func encodeTemplate(tmpl *pathspec.Template) templateDocument {
	doc := templateDocument{
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Template:    tmpl.Raw(),
		Inheritance: string(tmpl.Inheritance),
		CreatedAt:   tmpl.CreatedAt,
		UpdatedAt:   tmpl.UpdatedAt,
	}
	if parent := tmpl.Parent(); parent != nil {
		doc.Parent = parent.Name
	}
	if doc.Inheritance == string(pathspec.InheritNone) {
		doc.Inheritance = ""
	}
	for _, v := range tmpl.Variables() {
		doc.Variables = append(doc.Variables, variableDocument{
			Name:              v.Name,
			Description:       v.Description,
			Type:              string(v.Type),
			Required:          v.Required,
			Default:           v.Default,
			AllowedValues:     v.AllowedValues,
			ValidationPattern: v.ValidationPattern,
		})
	}
	return doc
}

func decodeGroup(data []byte) (*pathspec.Group, error) {
	var doc groupDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode group document: %w", err)
	}

	group := pathspec.NewGroup(doc.Name, doc.Description)
	// First pass creates every template so the second pass can link
	// parents regardless of document order.
	for _, tmplDoc := range doc.Templates {
		tmpl, err := decodeTemplate(tmplDoc)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", doc.Name, err)
		}
		if err := group.AddTemplate(tmpl); err != nil {
			return nil, fmt.Errorf("group %q: %w", doc.Name, err)
		}
	}
	for _, tmplDoc := range doc.Templates {
		if tmplDoc.Parent == "" {
			continue
		}
		tmpl, err := group.Template(tmplDoc.Name)
		if err != nil {
			return nil, err
		}
		parent, err := group.Template(tmplDoc.Parent)
		if err != nil {
			return nil, fmt.Errorf("group %q: template %q references unknown parent %q", doc.Name, tmplDoc.Name, tmplDoc.Parent)
		}
		mode, err := pathspec.ParseInheritance(tmplDoc.Inheritance)
		if err != nil {
			return nil, fmt.Errorf("group %q: template %q: %w", doc.Name, tmplDoc.Name, err)
		}
		if err := tmpl.SetParent(parent, mode); err != nil {
			return nil, fmt.Errorf("group %q: template %q: %w", doc.Name, tmplDoc.Name, err)
		}
		tmpl.CreatedAt = tmplDoc.CreatedAt
		tmpl.UpdatedAt = tmplDoc.UpdatedAt
	}

	group.CreatedAt = doc.CreatedAt
	group.UpdatedAt = doc.UpdatedAt
	return group, nil
}

func decodeTemplate(doc templateDocument) (*pathspec.Template, error) {
	vars := make([]pathspec.Variable, 0, len(doc.Variables))
	for _, varDoc := range doc.Variables {
		varType, err := pathspec.ParseVariableType(varDoc.Type)
		if err != nil {
			return nil, fmt.Errorf("template %q variable %q: %w", doc.Name, varDoc.Name, err)
		}
		vars = append(vars, pathspec.Variable{
			Name:              varDoc.Name,
			Description:       varDoc.Description,
			Type:              varType,
			Required:          varDoc.Required,
			Default:           varDoc.Default,
			AllowedValues:     varDoc.AllowedValues,
			ValidationPattern: varDoc.ValidationPattern,
		})
	}

	tmpl, err := pathspec.NewTemplate(doc.Name, doc.Template, vars...)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", doc.Name, err)
	}
	tmpl.Description = doc.Description
	tmpl.CreatedAt = doc.CreatedAt
	tmpl.UpdatedAt = doc.UpdatedAt
	return tmpl, nil
}

func encodeMapping(mapping *pathspec.Mapping) ([]byte, error) {
	doc := mappingDocument{
		Name:        mapping.Name,
		Description: mapping.Description,
		CreatedAt:   mapping.CreatedAt,
		UpdatedAt:   mapping.UpdatedAt,
	}
	for _, slot := range pathspec.Slots {
		tmpl := mapping.SlotTemplate(slot)
		if tmpl == nil {
			continue
		}
		if doc.Mappings == nil {
			doc.Mappings = make(map[string]string)
		}
		doc.Mappings[string(slot)] = tmpl.EffectiveTemplate()
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode mapping %q: %w", mapping.Name, err)
	}
	return data, nil
}

func decodeMapping(data []byte) (*pathspec.Mapping, error) {
	var doc mappingDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode mapping document: %w", err)
	}

	mapping := pathspec.NewMapping(doc.Name, doc.Description)
	for _, slot := range pathspec.Slots {
		raw, ok := doc.Mappings[string(slot)]
		if !ok {
			continue
		}
		tmpl, err := pathspec.NewTemplate(string(slot), raw)
		if err != nil {
			return nil, fmt.Errorf("mapping %q slot %s: %w", doc.Name, slot, err)
		}
		if err := mapping.SetSlot(slot, tmpl); err != nil {
			return nil, fmt.Errorf("mapping %q slot %s: %w", doc.Name, slot, err)
		}
	}
	for key := range doc.Mappings {
		if !validMappingSlot(key) {
			return nil, fmt.Errorf("mapping %q: unknown slot %q", doc.Name, key)
		}
	}

	mapping.CreatedAt = doc.CreatedAt
	mapping.UpdatedAt = doc.UpdatedAt
	return mapping, nil
}

func validMappingSlot(key string) bool {
	for _, slot := range pathspec.Slots {
		if key == string(slot) {
			return true
		}
	}
	return false
}
