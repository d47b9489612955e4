package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"slate/internal/pathspec"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	kindGroup   = "group"
	kindMapping = "mapping"
)

// SQLiteStore keeps every document in a single SQLite database, one row
// per group or mapping with the TOML codec output as payload.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the document database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveGroup(ctx context.Context, group *pathspec.Group) error {
	if err := validateDocName(group.Name); err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	data, err := encodeGroup(group)
	if err != nil {
		return err
	}
	return s.upsert(ctx, kindGroup, group.Name, data)
}

func (s *SQLiteStore) LoadGroup(ctx context.Context, name string) (*pathspec.Group, error) {
	data, err := s.fetch(ctx, kindGroup, name)
	if err != nil {
		return nil, fmt.Errorf("load group %q: %w", name, err)
	}
	return decodeGroup(data)
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]string, error) {
	return s.list(ctx, kindGroup)
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, name string) error {
	if err := s.remove(ctx, kindGroup, name); err != nil {
		return fmt.Errorf("delete group %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) SaveMapping(ctx context.Context, mapping *pathspec.Mapping) error {
	if err := validateDocName(mapping.Name); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	data, err := encodeMapping(mapping)
	if err != nil {
		return err
	}
	return s.upsert(ctx, kindMapping, mapping.Name, data)
}

func (s *SQLiteStore) LoadMapping(ctx context.Context, name string) (*pathspec.Mapping, error) {
	data, err := s.fetch(ctx, kindMapping, name)
	if err != nil {
		return nil, fmt.Errorf("load mapping %q: %w", name, err)
	}
	return decodeMapping(data)
}

func (s *SQLiteStore) ListMappings(ctx context.Context) ([]string, error) {
	return s.list(ctx, kindMapping)
}

func (s *SQLiteStore) DeleteMapping(ctx context.Context, name string) error {
	if err := s.remove(ctx, kindMapping, name); err != nil {
		return fmt.Errorf("delete mapping %q: %w", name, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) upsert(ctx context.Context, kind, name string, payload []byte) error {
	ctx = ensureContext(ctx)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (kind, name, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		kind, name, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save %s %q: %w", kind, name, err)
	}
	return nil
}

func (s *SQLiteStore) fetch(ctx context.Context, kind, name string) ([]byte, error) {
	ctx = ensureContext(ctx)
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM documents WHERE kind = ? AND name = ?",
		kind, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *SQLiteStore) list(ctx context.Context, kind string) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM documents WHERE kind = ? ORDER BY name", kind)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) remove(ctx context.Context, kind, name string) error {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE kind = ? AND name = ?", kind, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
