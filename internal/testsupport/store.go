package testsupport

import (
	"context"
	"testing"

	"slate/internal/config"
	"slate/internal/pathspec"
	"slate/internal/store"
)

// MustOpenStore opens the configured store backend for tests and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SaveGroup persists a group for tests.
func SaveGroup(t testing.TB, st store.Store, group *pathspec.Group) {
	t.Helper()
	if err := st.SaveGroup(context.Background(), group); err != nil {
		t.Fatalf("store.SaveGroup: %v", err)
	}
}

// SaveMapping persists a studio mapping for tests.
func SaveMapping(t testing.TB, st store.Store, mapping *pathspec.Mapping) {
	t.Helper()
	if err := st.SaveMapping(context.Background(), mapping); err != nil {
		t.Fatalf("store.SaveMapping: %v", err)
	}
}
