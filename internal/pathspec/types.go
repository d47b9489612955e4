package pathspec

import (
	"fmt"
	"strings"
)

// EntityType identifies the production concept a path describes.
type EntityType string

const (
	EntityAsset    EntityType = "asset"
	EntityShot     EntityType = "shot"
	EntitySequence EntityType = "sequence"
	EntityEpisode  EntityType = "episode"
	EntitySeries   EntityType = "series"
	EntityProject  EntityType = "project"
)

// DataType identifies the lifecycle category of the data at a path.
type DataType string

const (
	DataWork           DataType = "work"
	DataPublished      DataType = "published"
	DataCache          DataType = "cache"
	DataPublishedCache DataType = "published_cache"
	DataRender         DataType = "render"
	DataDeliverable    DataType = "deliverable"
)

// VariableType constrains the values a template variable accepts.
type VariableType string

const (
	VariableString  VariableType = "string"
	VariableInteger VariableType = "integer"
	VariableEnum    VariableType = "enum"
	VariableDate    VariableType = "date"
	VariableBoolean VariableType = "boolean"
	VariableContext VariableType = "context"
)

// Inheritance selects how a template combines with its parent.
type Inheritance string

const (
	InheritNone     Inheritance = "none"
	InheritExtend   Inheritance = "extend"
	InheritOverride Inheritance = "override"
)

// ParseEntityType converts a string into an EntityType.
func ParseEntityType(value string) (EntityType, error) {
	switch EntityType(value) {
	case EntityAsset, EntityShot, EntitySequence, EntityEpisode, EntitySeries, EntityProject:
		return EntityType(value), nil
	}
	return "", fmt.Errorf("unknown entity type %q", value)
}

// ParseDataType converts a string into a DataType.
func ParseDataType(value string) (DataType, error) {
	switch DataType(value) {
	case DataWork, DataPublished, DataCache, DataPublishedCache, DataRender, DataDeliverable:
		return DataType(value), nil
	}
	return "", fmt.Errorf("unknown data type %q", value)
}

// ParseVariableType converts a string into a VariableType. An empty value
// maps to VariableString, matching the persisted document defaults.
func ParseVariableType(value string) (VariableType, error) {
	if value == "" {
		return VariableString, nil
	}
	switch VariableType(value) {
	case VariableString, VariableInteger, VariableEnum, VariableDate, VariableBoolean, VariableContext:
		return VariableType(value), nil
	}
	return "", fmt.Errorf("unknown variable type %q", value)
}

// ParseInheritance converts a string into an Inheritance mode,
// case-insensitively. An empty value maps to InheritNone.
func ParseInheritance(value string) (Inheritance, error) {
	if value == "" {
		return InheritNone, nil
	}
	switch Inheritance(strings.ToLower(value)) {
	case InheritNone, InheritExtend, InheritOverride:
		return Inheritance(strings.ToLower(value)), nil
	}
	return "", fmt.Errorf("unknown inheritance mode %q", value)
}
