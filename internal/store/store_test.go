package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"slate/internal/pathspec"
	"slate/internal/store"
)

type backend struct {
	name string
	open func(t *testing.T) store.Store
}

func backends() []backend {
	return []backend{
		{
			name: "files",
			open: func(t *testing.T) store.Store {
				dir := t.TempDir()
				s, err := store.OpenFiles(filepath.Join(dir, "templates"), filepath.Join(dir, "studios"))
				if err != nil {
					t.Fatalf("OpenFiles: %v", err)
				}
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) store.Store {
				s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "slate.db"))
				if err != nil {
					t.Fatalf("OpenSQLite: %v", err)
				}
				return s
			},
		},
	}
}

func buildGroup(t *testing.T) *pathspec.Group {
	t.Helper()
	group := pathspec.NewGroup("main", "primary conventions")
	department := pathspec.Variable{
		Name:          "DEPARTMENT",
		Type:          pathspec.VariableEnum,
		Required:      true,
		AllowedValues: []any{"modeling", "rigging"},
		Default:       "modeling",
	}
	if _, err := group.CreateTemplate(pathspec.TemplateSpec{
		Name:      "base",
		Template:  "/projects/{PROJECT}",
		Variables: nil,
	}); err != nil {
		t.Fatalf("create base: %v", err)
	}
	if _, err := group.CreateTemplate(pathspec.TemplateSpec{
		Name:        "asset_work",
		Template:    "assets/{ASSET_NAME}/work/{DEPARTMENT}",
		Variables:   []pathspec.Variable{department},
		Parent:      "base",
		Inheritance: pathspec.InheritExtend,
	}); err != nil {
		t.Fatalf("create asset_work: %v", err)
	}
	return group
}

func TestGroupRoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			if err := s.SaveGroup(ctx, buildGroup(t)); err != nil {
				t.Fatalf("SaveGroup: %v", err)
			}

			loaded, err := s.LoadGroup(ctx, "main")
			if err != nil {
				t.Fatalf("LoadGroup: %v", err)
			}
			if loaded.Description != "primary conventions" {
				t.Fatalf("description lost: %q", loaded.Description)
			}

			tmpl, err := loaded.Template("asset_work")
			if err != nil {
				t.Fatalf("Template: %v", err)
			}
			if got := tmpl.EffectiveTemplate(); got != "/projects/{PROJECT}/assets/{ASSET_NAME}/work/{DEPARTMENT}" {
				t.Fatalf("parent link lost across round trip: %q", got)
			}

			department, ok := tmpl.Variable("DEPARTMENT")
			if !ok {
				t.Fatal("DEPARTMENT variable lost")
			}
			if department.Type != pathspec.VariableEnum {
				t.Fatalf("variable type lost: %q", department.Type)
			}
			if department.Default != "modeling" {
				t.Fatalf("variable default lost: %v", department.Default)
			}
			if len(department.AllowedValues) != 2 {
				t.Fatalf("allowed values lost: %v", department.AllowedValues)
			}

			path, err := tmpl.Format(map[string]any{
				"PROJECT":    "MyProject",
				"ASSET_NAME": "hero",
			})
			if err != nil {
				t.Fatalf("Format after round trip: %v", err)
			}
			if path != "assets/hero/work/modeling" {
				t.Fatalf("unexpected formatted path: %q", path)
			}
		})
	}
}

func TestMappingRoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			mapping := pathspec.NewMapping("studio_a", "west coast facility")
			assetWork, err := pathspec.NewTemplate("asset_work", "/projects/{PROJECT}/assets/{NAME}/work")
			if err != nil {
				t.Fatalf("NewTemplate: %v", err)
			}
			if err := mapping.SetSlot(pathspec.SlotAssetWork, assetWork); err != nil {
				t.Fatalf("SetSlot: %v", err)
			}

			if err := s.SaveMapping(ctx, mapping); err != nil {
				t.Fatalf("SaveMapping: %v", err)
			}

			loaded, err := s.LoadMapping(ctx, "studio_a")
			if err != nil {
				t.Fatalf("LoadMapping: %v", err)
			}
			tmpl := loaded.SlotTemplate(pathspec.SlotAssetWork)
			if tmpl == nil {
				t.Fatal("asset_work slot lost")
			}
			if tmpl.Raw() != "/projects/{PROJECT}/assets/{NAME}/work" {
				t.Fatalf("slot template changed: %q", tmpl.Raw())
			}
			if loaded.SlotTemplate(pathspec.SlotRender) != nil {
				t.Fatal("empty slot came back populated")
			}
		})
	}
}

func TestLoadMissingDocument(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			if _, err := s.LoadGroup(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.DeleteMapping(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on delete, got %v", err)
			}
		})
	}
}

func TestListAndDelete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			for _, name := range []string{"zulu", "alpha"} {
				group := pathspec.NewGroup(name, "")
				if err := s.SaveGroup(ctx, group); err != nil {
					t.Fatalf("SaveGroup %s: %v", name, err)
				}
			}

			names, err := s.ListGroups(ctx)
			if err != nil {
				t.Fatalf("ListGroups: %v", err)
			}
			if !reflect.DeepEqual(names, []string{"alpha", "zulu"}) {
				t.Fatalf("expected sorted names, got %v", names)
			}

			if err := s.DeleteGroup(ctx, "zulu"); err != nil {
				t.Fatalf("DeleteGroup: %v", err)
			}
			names, err = s.ListGroups(ctx)
			if err != nil {
				t.Fatalf("ListGroups after delete: %v", err)
			}
			if !reflect.DeepEqual(names, []string{"alpha"}) {
				t.Fatalf("unexpected names after delete: %v", names)
			}
		})
	}
}

func TestSaveRejectsUnsafeNames(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			if err := s.SaveGroup(ctx, pathspec.NewGroup("../escape", "")); err == nil {
				t.Fatal("expected path separator in name to be rejected")
			}
			if err := s.SaveMapping(ctx, pathspec.NewMapping("", "")); err == nil {
				t.Fatal("expected empty name to be rejected")
			}
		})
	}
}
