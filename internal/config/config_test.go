package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"slate/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SLATE_CONFIG", "")
	t.Setenv("SLATE_STUDIO", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "slate")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Store.Backend != config.StoreBackendTOML {
		t.Fatalf("unexpected store backend: %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantData, "slate.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Store.SQLitePath)
	}
	if cfg.Resolver.DefaultGroup != "default" {
		t.Fatalf("unexpected default group: %q", cfg.Resolver.DefaultGroup)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.TemplatesDir(), cfg.StudiosDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
project_root = "` + filepath.Join(dir, "projects") + `"

[store]
backend = "sqlite"

[resolver]
default_studio = "studio_a"

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Store.Backend != config.StoreBackendSQLite {
		t.Fatalf("unexpected backend: %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != filepath.Join(dir, "data", "slate.db") {
		t.Fatalf("sqlite path did not follow data_dir: %q", cfg.Store.SQLitePath)
	}
	if cfg.Resolver.DefaultStudio != "studio_a" {
		t.Fatalf("unexpected default studio: %q", cfg.Resolver.DefaultStudio)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"postgres\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown backend to be rejected")
	}
}

func TestLoadHonorsEnvConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLATE_CONFIG", path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("env config not used: %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected level: %q", cfg.Logging.Level)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
