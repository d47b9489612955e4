package store

import (
	"strings"
	"testing"

	"slate/internal/pathspec"
)

func TestDecodeGroupRejectsUnknownParent(t *testing.T) {
	doc := `
name = "main"

[[templates]]
name = "child"
template = "/work/{NAME}"
parent = "missing"
inheritance = "EXTEND"
`
	if _, err := decodeGroup([]byte(doc)); err == nil {
		t.Fatal("expected unknown parent to fail decoding")
	}
}

func TestDecodeMappingRejectsUnknownSlot(t *testing.T) {
	doc := `
name = "studio_a"

[mappings]
bogus_path = "/x"
`
	if _, err := decodeMapping([]byte(doc)); err == nil {
		t.Fatal("expected unknown slot key to fail decoding")
	}
}

func TestMappingDocumentPersistsRawStrings(t *testing.T) {
	mapping := pathspec.NewMapping("studio_a", "")
	tmpl, err := pathspec.NewTemplate("asset_work", "/projects/{PROJECT}/assets/{ASSET_NAME}/work")
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	if err := mapping.SetSlot(pathspec.SlotAssetWork, tmpl); err != nil {
		t.Fatalf("SetSlot: %v", err)
	}

	data, err := encodeMapping(mapping)
	if err != nil {
		t.Fatalf("encodeMapping: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "[mappings]") {
		t.Fatalf("expected a mappings table, got:\n%s", doc)
	}
	if !strings.Contains(doc, "asset_work_path = ") ||
		!strings.Contains(doc, "/projects/{PROJECT}/assets/{ASSET_NAME}/work") {
		t.Fatalf("expected the slot to persist as a raw string, got:\n%s", doc)
	}
	if strings.Contains(doc, "variables") {
		t.Fatalf("variables must not be persisted per slot, got:\n%s", doc)
	}
}

func TestDecodeMappingRederivesVariables(t *testing.T) {
	doc := `
name = "studio_a"

[mappings]
shot_work_path = "/projects/{PROJECT}/shots/{SHOT_NAME}/work"
`
	mapping, err := decodeMapping([]byte(doc))
	if err != nil {
		t.Fatalf("decodeMapping: %v", err)
	}
	tmpl := mapping.SlotTemplate(pathspec.SlotShotWork)
	if tmpl == nil {
		t.Fatal("shot_work slot lost")
	}
	for _, name := range []string{"PROJECT", "SHOT_NAME"} {
		v, ok := tmpl.Variable(name)
		if !ok {
			t.Fatalf("variable %s not re-derived from the raw string", name)
		}
		if v.Type != pathspec.VariableString || !v.Required {
			t.Fatalf("re-derived %s is not a required string: %+v", name, v)
		}
	}
}

func TestDecodeGroupLinksParentsRegardlessOfOrder(t *testing.T) {
	doc := `
name = "main"

[[templates]]
name = "child"
template = "assets/{NAME}"
parent = "base"
inheritance = "EXTEND"

[[templates]]
name = "base"
template = "/projects/{PROJECT}"
`
	group, err := decodeGroup([]byte(doc))
	if err != nil {
		t.Fatalf("decodeGroup: %v", err)
	}
	child, err := group.Template("child")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if got := child.EffectiveTemplate(); got != "/projects/{PROJECT}/assets/{NAME}" {
		t.Fatalf("unexpected effective template: %q", got)
	}
}
