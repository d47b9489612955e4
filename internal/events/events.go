package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event. Kind is a stable
// machine-readable name; Metadata carries the identity and timestamp
// stamped at publication.
type Event interface {
	Kind() string
	Metadata() Meta
}

// Meta identifies one event occurrence.
type Meta struct {
	ID         uuid.UUID
	OccurredAt time.Time
}

// NewMeta stamps a fresh event identity with a UTC timestamp.
func NewMeta() Meta {
	return Meta{ID: uuid.New(), OccurredAt: time.Now().UTC()}
}

func (m Meta) Metadata() Meta { return m }

// TemplateGroupCreated is raised when a new template group is persisted.
type TemplateGroupCreated struct {
	Meta
	Group string
}

func (TemplateGroupCreated) Kind() string { return "template_group.created" }

// TemplateGroupDeleted is raised when a template group is removed.
type TemplateGroupDeleted struct {
	Meta
	Group string
}

func (TemplateGroupDeleted) Kind() string { return "template_group.deleted" }

// TemplateCreated is raised when a template is added to a group.
type TemplateCreated struct {
	Meta
	Group    string
	Template string
}

func (TemplateCreated) Kind() string { return "template.created" }

// TemplateUpdated is raised after a successful template update.
type TemplateUpdated struct {
	Meta
	Group    string
	Template string
}

func (TemplateUpdated) Kind() string { return "template.updated" }

// TemplateDeleted is raised when a template is removed from a group.
type TemplateDeleted struct {
	Meta
	Group    string
	Template string
}

func (TemplateDeleted) Kind() string { return "template.deleted" }

// StudioMappingCreated is raised when a new studio mapping is persisted.
type StudioMappingCreated struct {
	Meta
	Studio string
}

func (StudioMappingCreated) Kind() string { return "studio_mapping.created" }

// StudioMappingDeleted is raised when a studio mapping is removed.
type StudioMappingDeleted struct {
	Meta
	Studio string
}

func (StudioMappingDeleted) Kind() string { return "studio_mapping.deleted" }

// MappingTemplateSet is raised when a slot assignment changes on a
// studio mapping.
type MappingTemplateSet struct {
	Meta
	Studio string
	Slot   string
}

func (MappingTemplateSet) Kind() string { return "studio_mapping.template_set" }

// PathResolved is raised on every successful forward resolution. It
// carries the entity name and the merged bindings the template was
// formatted with alongside the resolved path.
type PathResolved struct {
	Meta
	Studio     string
	EntityType string
	DataType   string
	EntityName string
	Path       string
	Bindings   map[string]any
}

func (PathResolved) Kind() string { return "path.resolved" }

// PathConverted is raised on every successful cross-studio conversion.
type PathConverted struct {
	Meta
	SourceStudio string
	TargetStudio string
	SourcePath   string
	TargetPath   string
}

func (PathConverted) Kind() string { return "path.converted" }

// FoldersCreated is raised after a resolved path is materialized on disk.
type FoldersCreated struct {
	Meta
	Studio string
	Path   string
}

func (FoldersCreated) Kind() string { return "path.folders_created" }
