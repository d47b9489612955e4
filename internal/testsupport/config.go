package testsupport

import (
	"path/filepath"
	"testing"

	"slate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Store.SQLitePath = filepath.Join(base, "data", "slate.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithSQLiteBackend switches the test config to the sqlite store.
func WithSQLiteBackend() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Store.Backend = config.StoreBackendSQLite
	}
}

// WithDefaultStudio sets the resolver's fallback studio mapping.
func WithDefaultStudio(studio string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Resolver.DefaultStudio = studio
	}
}

// WithProjectRoot anchors folder creation at the given directory.
func WithProjectRoot(root string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.ProjectRoot = root
	}
}
