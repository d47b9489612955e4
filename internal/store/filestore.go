package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"slate/internal/pathspec"
)

const (
	documentExt    = ".toml"
	lockRetryDelay = 50 * time.Millisecond
)

// FileStore keeps one TOML document per group under templatesDir and one
// per studio under studiosDir. Writes go through a temp file and rename,
// guarded by a flock sidecar so concurrent slate processes cannot
// interleave partial documents.
type FileStore struct {
	templatesDir string
	studiosDir   string
	lock         *flock.Flock
}

// OpenFiles builds a file-backed store rooted at the two directories,
// creating them as needed.
func OpenFiles(templatesDir, studiosDir string) (*FileStore, error) {
	for _, dir := range []string{templatesDir, studiosDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}
	lockPath := filepath.Join(filepath.Dir(templatesDir), ".slate.lock")
	return &FileStore{
		templatesDir: templatesDir,
		studiosDir:   studiosDir,
		lock:         flock.New(lockPath),
	}, nil
}

func (s *FileStore) SaveGroup(ctx context.Context, group *pathspec.Group) error {
	if err := validateDocName(group.Name); err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	data, err := encodeGroup(group)
	if err != nil {
		return err
	}
	return s.writeDocument(ctx, s.groupPath(group.Name), data)
}

func (s *FileStore) LoadGroup(ctx context.Context, name string) (*pathspec.Group, error) {
	data, err := s.readDocument(ctx, s.groupPath(name))
	if err != nil {
		return nil, fmt.Errorf("load group %q: %w", name, err)
	}
	return decodeGroup(data)
}

func (s *FileStore) ListGroups(ctx context.Context) ([]string, error) {
	return listDocuments(s.templatesDir)
}

func (s *FileStore) DeleteGroup(ctx context.Context, name string) error {
	if err := s.deleteDocument(ctx, s.groupPath(name)); err != nil {
		return fmt.Errorf("delete group %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) SaveMapping(ctx context.Context, mapping *pathspec.Mapping) error {
	if err := validateDocName(mapping.Name); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	data, err := encodeMapping(mapping)
	if err != nil {
		return err
	}
	return s.writeDocument(ctx, s.mappingPath(mapping.Name), data)
}

func (s *FileStore) LoadMapping(ctx context.Context, name string) (*pathspec.Mapping, error) {
	data, err := s.readDocument(ctx, s.mappingPath(name))
	if err != nil {
		return nil, fmt.Errorf("load mapping %q: %w", name, err)
	}
	return decodeMapping(data)
}

func (s *FileStore) ListMappings(ctx context.Context) ([]string, error) {
	return listDocuments(s.studiosDir)
}

func (s *FileStore) DeleteMapping(ctx context.Context, name string) error {
	if err := s.deleteDocument(ctx, s.mappingPath(name)); err != nil {
		return fmt.Errorf("delete mapping %q: %w", name, err)
	}
	return nil
}

// Close releases the write lock if held.
func (s *FileStore) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

func (s *FileStore) groupPath(name string) string {
	return filepath.Join(s.templatesDir, name+documentExt)
}

func (s *FileStore) mappingPath(name string) string {
	return filepath.Join(s.studiosDir, name+documentExt)
}

func (s *FileStore) writeDocument(ctx context.Context, path string, data []byte) error {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (s *FileStore) readDocument(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) deleteDocument(ctx context.Context, path string) error {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FileStore) acquireLock(ctx context.Context) (func(), error) {
	locked, err := s.lock.TryLockContext(ensureContext(ctx), lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return nil, errors.New("store lock is held by another process")
	}
	return func() { _ = s.lock.Unlock() }, nil
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, documentExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, documentExt))
	}
	sort.Strings(names)
	return names, nil
}
