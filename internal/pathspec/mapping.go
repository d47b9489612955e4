package pathspec

import (
	"fmt"
	"time"
)

// Slot names one (entity type, data type) template position in a studio
// mapping. Slot names double as the keys of the persisted studio document.
type Slot string

const (
	SlotAssetPublished      Slot = "asset_published_path"
	SlotAssetWork           Slot = "asset_work_path"
	SlotShotPublished       Slot = "shot_published_path"
	SlotShotWork            Slot = "shot_work_path"
	SlotRender              Slot = "render_path"
	SlotCache               Slot = "cache_path"
	SlotAssetPublishedCache Slot = "asset_published_cache_path"
	SlotShotPublishedCache  Slot = "shot_published_cache_path"
	SlotDeliverable         Slot = "deliverable_path"
)

// MandatorySlots are the slots a mapping must populate to be valid.
var MandatorySlots = []Slot{
	SlotAssetPublished,
	SlotAssetWork,
	SlotShotPublished,
	SlotShotWork,
}

// Slots lists every slot in document order.
var Slots = []Slot{
	SlotAssetPublished,
	SlotAssetWork,
	SlotShotPublished,
	SlotShotWork,
	SlotRender,
	SlotCache,
	SlotAssetPublishedCache,
	SlotShotPublishedCache,
	SlotDeliverable,
}

// SlotFor maps an (entity type, data type) pair to its slot. The render,
// cache, and deliverable slots are shared between assets and shots.
func SlotFor(entity EntityType, data DataType) (Slot, bool) {
	switch entity {
	case EntityAsset:
		switch data {
		case DataPublished:
			return SlotAssetPublished, true
		case DataWork:
			return SlotAssetWork, true
		case DataRender:
			return SlotRender, true
		case DataCache:
			return SlotCache, true
		case DataPublishedCache:
			return SlotAssetPublishedCache, true
		case DataDeliverable:
			return SlotDeliverable, true
		}
	case EntityShot:
		switch data {
		case DataPublished:
			return SlotShotPublished, true
		case DataWork:
			return SlotShotWork, true
		case DataRender:
			return SlotRender, true
		case DataCache:
			return SlotCache, true
		case DataPublishedCache:
			return SlotShotPublishedCache, true
		case DataDeliverable:
			return SlotDeliverable, true
		}
	}
	return "", false
}

// Mapping binds one folder template to each slot a studio defines. It is
// the unit of cross-studio path translation; its templates are owned
// copies, independent of any template group.
type Mapping struct {
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	slots map[Slot]*Template
}

// NewMapping creates an empty studio mapping.
func NewMapping(name, description string) *Mapping {
	now := time.Now().UTC()
	return &Mapping{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		slots:       make(map[Slot]*Template),
	}
}

// SlotTemplate returns the template assigned to a slot, or nil.
func (m *Mapping) SlotTemplate(slot Slot) *Template {
	return m.slots[slot]
}

// TemplateFor returns the template for an (entity type, data type) pair,
// or nil when the pair has no slot or the slot is empty.
func (m *Mapping) TemplateFor(entity EntityType, data DataType) *Template {
	slot, ok := SlotFor(entity, data)
	if !ok {
		return nil
	}
	return m.slots[slot]
}

// SetTemplateFor validates the template and assigns it to the pair's
// slot. Other slots are never touched.
func (m *Mapping) SetTemplateFor(entity EntityType, data DataType, t *Template) error {
	slot, ok := SlotFor(entity, data)
	if !ok {
		return fmt.Errorf("no mapping slot for %s/%s", entity, data)
	}
	return m.SetSlot(slot, t)
}

// SetSlot validates the template and assigns it to the named slot.
func (m *Mapping) SetSlot(slot Slot, t *Template) error {
	if !validSlot(slot) {
		return fmt.Errorf("unknown mapping slot %q", slot)
	}
	if t != nil {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if t == nil {
		delete(m.slots, slot)
	} else {
		m.slots[slot] = t
	}
	m.touch()
	return nil
}

// Validate reports every slot-level failure: mandatory slots that were
// never assigned and assigned templates that fail their own self-check.
func (m *Mapping) Validate() []Issue {
	var issues []Issue
	for _, slot := range MandatorySlots {
		if m.slots[slot] == nil {
			issues = append(issues, Issue{Name: string(slot), Reason: "template is required but not defined"})
		}
	}
	for _, slot := range Slots {
		t := m.slots[slot]
		if t == nil {
			continue
		}
		if err := t.Validate(); err != nil {
			issues = append(issues, Issue{Name: string(slot), Reason: err.Error()})
		}
	}
	return issues
}

// AnalysisSlot pairs a candidate template with the entity and data type
// it would identify during backward path analysis.
type AnalysisSlot struct {
	Entity   EntityType
	Data     DataType
	Template *Template
}

// AnalysisSlots returns the populated slots in the fixed order backward
// analysis probes them: the four core slots first, then the optional
// slots, with shared slots tried for assets before shots.
func (m *Mapping) AnalysisSlots() []AnalysisSlot {
	candidates := []AnalysisSlot{
		{EntityAsset, DataPublished, m.slots[SlotAssetPublished]},
		{EntityAsset, DataWork, m.slots[SlotAssetWork]},
		{EntityShot, DataPublished, m.slots[SlotShotPublished]},
		{EntityShot, DataWork, m.slots[SlotShotWork]},
		{EntityAsset, DataRender, m.slots[SlotRender]},
		{EntityShot, DataRender, m.slots[SlotRender]},
		{EntityAsset, DataCache, m.slots[SlotCache]},
		{EntityShot, DataCache, m.slots[SlotCache]},
		{EntityAsset, DataPublishedCache, m.slots[SlotAssetPublishedCache]},
		{EntityShot, DataPublishedCache, m.slots[SlotShotPublishedCache]},
		{EntityAsset, DataDeliverable, m.slots[SlotDeliverable]},
		{EntityShot, DataDeliverable, m.slots[SlotDeliverable]},
	}
	out := make([]AnalysisSlot, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Template != nil {
			out = append(out, candidate)
		}
	}
	return out
}

func validSlot(slot Slot) bool {
	for _, known := range Slots {
		if slot == known {
			return true
		}
	}
	return false
}

func (m *Mapping) touch() {
	m.UpdatedAt = time.Now().UTC()
}
