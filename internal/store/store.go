package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slate/internal/config"
	"slate/internal/pathspec"
)

// ErrNotFound reports that a named document does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface for template groups and studio
// mappings. Implementations must be safe for concurrent use from a
// single process.
type Store interface {
	SaveGroup(ctx context.Context, group *pathspec.Group) error
	LoadGroup(ctx context.Context, name string) (*pathspec.Group, error)
	ListGroups(ctx context.Context) ([]string, error)
	DeleteGroup(ctx context.Context, name string) error

	SaveMapping(ctx context.Context, mapping *pathspec.Mapping) error
	LoadMapping(ctx context.Context, name string) (*pathspec.Mapping, error)
	ListMappings(ctx context.Context) ([]string, error)
	DeleteMapping(ctx context.Context, name string) error

	Close() error
}

// Open builds the store selected by store.backend in the configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		return OpenSQLite(cfg.Store.SQLitePath)
	case config.StoreBackendTOML, "":
		return OpenFiles(cfg.TemplatesDir(), cfg.StudiosDir())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Document names become filenames and database keys, so path separators
// and empty names are rejected up front.
func validateDocName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name must not be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("name %q must not contain path separators", name)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
