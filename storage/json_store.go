package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore implements CompletionStore on a single JSON file holding an
// array of titles. Writes replace the file in place and are not atomic.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by path. An empty path selects DefaultPath.
// The file is not touched until Load or Save is called.
func NewJSONStore(path string) *JSONStore {
	if path == "" {
		path = DefaultPath
	}
	return &JSONStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *JSONStore) Path() string { return s.path }

// Load reads the persisted titles. A missing file is an empty set; a file
// that is not a JSON array of strings is reported as ErrStorageCorrupt.
func (s *JSONStore) Load(ctx context.Context) (CompletionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CompletionSet{}, nil
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: fmt.Errorf("%w: %v", ErrStorageCorrupt, err)}
	}
	if titles == nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: fmt.Errorf("%w: not a list of titles", ErrStorageCorrupt)}
	}

	return CompletionSet(titles), nil
}

// Save overwrites the file with set. Parent directories are created as needed.
func (s *JSONStore) Save(ctx context.Context, set CompletionSet) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}

	if set == nil {
		set = CompletionSet{}
	}
	data, err := json.Marshal([]string(set))
	if err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &StorageError{Op: "write", Path: s.path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}
