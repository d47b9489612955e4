package pathspec_test

import (
	"errors"
	"reflect"
	"testing"

	"slate/internal/pathspec"
)

const assetWorkTemplate = "/projects/{PROJECT}/assets/{ASSET_TYPE}/{ASSET_NAME}/work/{DEPARTMENT}/{VERSION}"

func mustTemplate(t *testing.T, name, raw string, vars ...pathspec.Variable) *pathspec.Template {
	t.Helper()
	tmpl, err := pathspec.NewTemplate(name, raw, vars...)
	if err != nil {
		t.Fatalf("NewTemplate(%q): %v", name, err)
	}
	return tmpl
}

func TestNewTemplateAutoDeclaresReferencedVariables(t *testing.T) {
	tmpl := mustTemplate(t, "asset_work", assetWorkTemplate)

	want := []string{"ASSET_NAME", "ASSET_TYPE", "DEPARTMENT", "PROJECT", "VERSION"}
	if !reflect.DeepEqual(tmpl.ReferencedVariables(), want) {
		t.Fatalf("unexpected referenced variables: %v", tmpl.ReferencedVariables())
	}
	for _, name := range want {
		v, ok := tmpl.Variable(name)
		if !ok {
			t.Fatalf("variable %s not auto-declared", name)
		}
		if v.Type != pathspec.VariableString || !v.Required {
			t.Fatalf("auto-declared %s is not a required string: %+v", name, v)
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	tmpl := mustTemplate(t, "asset_work", assetWorkTemplate)
	first := tmpl.Validate()
	second := tmpl.Validate()
	if first != nil || second != nil {
		t.Fatalf("expected both validations to pass: %v, %v", first, second)
	}
}

func TestFormatEndToEnd(t *testing.T) {
	tmpl := mustTemplate(t, "asset_work", assetWorkTemplate)
	path, err := tmpl.Format(map[string]any{
		"PROJECT":    "MyProject",
		"ASSET_TYPE": "character",
		"ASSET_NAME": "hero",
		"DEPARTMENT": "modeling",
		"VERSION":    "v001",
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "/projects/MyProject/assets/character/hero/work/modeling/v001"
	if path != want {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestFormatMissingRequiredVariable(t *testing.T) {
	tmpl := mustTemplate(t, "asset_work", assetWorkTemplate)
	_, err := tmpl.Format(map[string]any{
		"PROJECT":    "MyProject",
		"ASSET_NAME": "hero",
		"DEPARTMENT": "modeling",
		"VERSION":    "v001",
	})
	var resErr *pathspec.VariableResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected VariableResolutionError, got %v", err)
	}
	if resErr.Variable != "ASSET_TYPE" {
		t.Fatalf("expected failure to name ASSET_TYPE, got %q", resErr.Variable)
	}
}

func TestFormatAppliesDefaults(t *testing.T) {
	version := pathspec.Variable{
		Name:     "VERSION",
		Type:     pathspec.VariableString,
		Required: true,
		Default:  "v001",
	}
	tmpl := mustTemplate(t, "work", "/work/{NAME}/{VERSION}", version)

	path, err := tmpl.Format(map[string]any{"NAME": "hero"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if path != "/work/hero/v001" {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestFormatIgnoresExtraBindings(t *testing.T) {
	tmpl := mustTemplate(t, "work", "/work/{NAME}")
	path, err := tmpl.Format(map[string]any{"NAME": "hero", "UNUSED": "x", "ENTITY_NAME": "hero"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if path != "/work/hero" {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestFormatRejectsInvalidBinding(t *testing.T) {
	department := pathspec.Variable{
		Name:          "DEPARTMENT",
		Type:          pathspec.VariableEnum,
		Required:      true,
		AllowedValues: []any{"modeling", "rigging"},
	}
	tmpl := mustTemplate(t, "work", "/work/{DEPARTMENT}", department)

	if _, err := tmpl.Format(map[string]any{"DEPARTMENT": "lighting"}); err == nil {
		t.Fatal("expected disallowed value to fail formatting")
	}
	path, err := tmpl.Format(map[string]any{"DEPARTMENT": "rigging"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if path != "/work/rigging" {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	tmpl := mustTemplate(t, "work", "/work/{NAME}/{FRAME}")
	bindings := map[string]any{"NAME": "hero", "FRAME": 42}
	first, err := tmpl.Format(bindings)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	second, err := tmpl.Format(bindings)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if first != second || first != "/work/hero/42" {
		t.Fatalf("non-deterministic or wrong output: %q, %q", first, second)
	}
}

func TestEffectiveTemplateExtend(t *testing.T) {
	parent := mustTemplate(t, "base", "/projects/{PROJECT}")
	child := mustTemplate(t, "assets", "assets/{NAME}")
	if err := child.SetParent(parent, pathspec.InheritExtend); err != nil {
		t.Fatalf("SetParent: %v", err)
	}

	want := "/projects/{PROJECT}/assets/{NAME}"
	if got := child.EffectiveTemplate(); got != want {
		t.Fatalf("unexpected effective template: %q", got)
	}
}

func TestEffectiveTemplateExtendTrimsDuplicateSeparator(t *testing.T) {
	parent := mustTemplate(t, "base", "/projects/{PROJECT}/")
	child := mustTemplate(t, "assets", "/assets/{NAME}")
	if err := child.SetParent(parent, pathspec.InheritExtend); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if got := child.EffectiveTemplate(); got != "/projects/{PROJECT}/assets/{NAME}" {
		t.Fatalf("unexpected effective template: %q", got)
	}
}

func TestEffectiveTemplateOverride(t *testing.T) {
	parent := mustTemplate(t, "base", "/projects/{PROJECT}")
	child := mustTemplate(t, "custom", "/custom/{PROJECT}")
	if err := child.SetParent(parent, pathspec.InheritOverride); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if got := child.EffectiveTemplate(); got != "/custom/{PROJECT}" {
		t.Fatalf("unexpected effective template: %q", got)
	}
}

func TestEffectiveTemplateGrandparentChain(t *testing.T) {
	root := mustTemplate(t, "root", "/projects/{PROJECT}")
	mid := mustTemplate(t, "mid", "assets")
	leaf := mustTemplate(t, "leaf", "{NAME}/work")
	if err := mid.SetParent(root, pathspec.InheritExtend); err != nil {
		t.Fatalf("SetParent mid: %v", err)
	}
	if err := leaf.SetParent(mid, pathspec.InheritExtend); err != nil {
		t.Fatalf("SetParent leaf: %v", err)
	}
	if got := leaf.EffectiveTemplate(); got != "/projects/{PROJECT}/assets/{NAME}/work" {
		t.Fatalf("unexpected effective template: %q", got)
	}
}

func TestSetParentRejectsCycles(t *testing.T) {
	a := mustTemplate(t, "a", "/a")
	b := mustTemplate(t, "b", "/b")
	if err := b.SetParent(a, pathspec.InheritExtend); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if err := a.SetParent(b, pathspec.InheritExtend); err == nil {
		t.Fatal("expected ancestor cycle to be rejected")
	}
	if err := a.SetParent(a, pathspec.InheritExtend); err == nil {
		t.Fatal("expected self-parent to be rejected")
	}
}

func TestRemoveVariableStillReferenced(t *testing.T) {
	tmpl := mustTemplate(t, "work", "/work/{NAME}")
	if err := tmpl.RemoveVariable("NAME"); err == nil {
		t.Fatal("expected removal of referenced variable to fail")
	}

	extra := pathspec.Variable{Name: "UNUSED", Type: pathspec.VariableString}
	if err := tmpl.AddVariable(extra); err != nil {
		t.Fatalf("AddVariable: %v", err)
	}
	if err := tmpl.RemoveVariable("UNUSED"); err != nil {
		t.Fatalf("RemoveVariable: %v", err)
	}
}

func TestSetRawReparsesAndAutoDeclares(t *testing.T) {
	tmpl := mustTemplate(t, "work", "/work/{NAME}")
	if err := tmpl.SetRaw("/work/{NAME}/{VERSION}"); err != nil {
		t.Fatalf("SetRaw: %v", err)
	}
	if _, ok := tmpl.Variable("VERSION"); !ok {
		t.Fatal("expected VERSION to be auto-declared after SetRaw")
	}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("Validate after SetRaw: %v", err)
	}
}
