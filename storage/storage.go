// Package storage persists the set of completed playlist items.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultPath is where the completion set lives unless configured otherwise.
const DefaultPath = "completed_videos.json"

// Sentinel errors for common storage conditions.
var (
	// ErrStorageRead matches any *StorageError raised while loading.
	ErrStorageRead = errors.New("storage: read failed")
	// ErrStorageWrite matches any *StorageError raised while saving.
	ErrStorageWrite = errors.New("storage: write failed")
	// ErrStorageCorrupt indicates the file exists but is not a JSON array of strings.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
)

// StorageError wraps storage errors with operation and file context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s: %v\n", storErr.Op, storErr.Path, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("read" or "write").
	Op string
	// Path is the file being accessed.
	Path string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrStorageRead and ErrStorageWrite by operation.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageRead:
		return e.Op == "read"
	case ErrStorageWrite:
		return e.Op == "write"
	}
	return false
}

// CompletionStore loads and saves the completion set.
type CompletionStore interface {
	// Load returns the persisted set, or an empty set when nothing was saved yet.
	Load(ctx context.Context) (CompletionSet, error)
	// Save replaces the persisted set with set.
	Save(ctx context.Context, set CompletionSet) error
}

// CompletionSet is the ordered list of titles the user has marked as watched.
// It behaves as a set: Add never introduces duplicates. Order is kept as written.
type CompletionSet []string

// Contains reports whether title has been marked complete.
func (s CompletionSet) Contains(title string) bool {
	for _, t := range s {
		if t == title {
			return true
		}
	}
	return false
}

// Add appends title unless it is already present. It reports whether the set changed.
func (s *CompletionSet) Add(title string) bool {
	if s.Contains(title) {
		return false
	}
	*s = append(*s, title)
	return true
}

// Remove deletes every occurrence of title. It reports whether the set changed.
func (s *CompletionSet) Remove(title string) bool {
	if !s.Contains(title) {
		return false
	}
	kept := make(CompletionSet, 0, len(*s))
	for _, t := range *s {
		if t != title {
			kept = append(kept, t)
		}
	}
	*s = kept
	return true
}

// Clone returns an independent copy of the set.
func (s CompletionSet) Clone() CompletionSet {
	if s == nil {
		return CompletionSet{}
	}
	out := make(CompletionSet, len(s))
	copy(out, s)
	return out
}
