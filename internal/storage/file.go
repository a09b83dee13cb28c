package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists each document as a pretty-printed JSON file in a single
// directory. Writes go to a temporary sibling and are moved into place with
// os.Rename, which is atomic on POSIX filesystems.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the document stored under key into out. A missing file yields
// ErrNotFound so callers can fall back to a zero value.
func (s *FileStore) Get(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read document %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode document %q: %w", key, err)
	}
	return nil
}

// Put atomically replaces the document stored under key.
func (s *FileStore) Put(ctx context.Context, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %q: %w", key, err)
	}

	final := s.path(key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		// Best effort cleanup; the rename failure is the real error.
		_ = os.Remove(tmp)
		return fmt.Errorf("commit document %q: %w", key, err)
	}
	return nil
}
