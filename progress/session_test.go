package progress

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"ytprogress/storage"
	"ytprogress/youtube"
)

// fakeStore is an in-memory CompletionStore that can be told to fail.
type fakeStore struct {
	set     storage.CompletionSet
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeStore) Load(ctx context.Context) (storage.CompletionSet, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.set.Clone(), nil
}

func (f *fakeStore) Save(ctx context.Context, set storage.CompletionSet) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.set = set.Clone()
	return nil
}

func playlist() []youtube.PlaylistItem {
	return []youtube.PlaylistItem{
		item("a", "A", 100),
		item("b", "B", 300),
	}
}

func TestNewSession_LoadsCompletionSet(t *testing.T) {
	store := &fakeStore{set: storage.CompletionSet{"A"}}

	s, err := NewSession(context.Background(), store, playlist(), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if !s.IsCompleted(playlist()[0]) {
		t.Error("A should be completed")
	}
	if s.IsCompleted(playlist()[1]) {
		t.Error("B should not be completed")
	}

	sum := s.Summary()
	if sum.Percent != 25 || sum.RemainingSeconds != 300 {
		t.Errorf("Summary() = %+v, want 25%% and 300s remaining", sum)
	}
}

func TestNewSession_PropagatesLoadError(t *testing.T) {
	loadErr := &storage.StorageError{Op: "read", Path: "x", Err: storage.ErrStorageCorrupt}
	store := &fakeStore{loadErr: loadErr}

	_, err := NewSession(context.Background(), store, playlist(), nil)
	if !errors.Is(err, storage.ErrStorageRead) {
		t.Errorf("NewSession() error = %v, want ErrStorageRead", err)
	}
}

func TestSession_MarkCompletedPersists(t *testing.T) {
	store := &fakeStore{}
	s, _ := NewSession(context.Background(), store, playlist(), nil)
	ctx := context.Background()

	if err := s.MarkCompleted(ctx, playlist()[1]); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if !reflect.DeepEqual(store.set, storage.CompletionSet{"B"}) {
		t.Errorf("stored set = %v, want [B]", store.set)
	}

	// Marking again is a no-op and does not write.
	if err := s.MarkCompleted(ctx, playlist()[1]); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestSession_MarkIncomplete(t *testing.T) {
	store := &fakeStore{set: storage.CompletionSet{"A", "B"}}
	s, _ := NewSession(context.Background(), store, playlist(), nil)
	ctx := context.Background()

	if err := s.MarkIncomplete(ctx, playlist()[0]); err != nil {
		t.Fatalf("MarkIncomplete() error = %v", err)
	}
	if !reflect.DeepEqual(store.set, storage.CompletionSet{"B"}) {
		t.Errorf("stored set = %v, want [B]", store.set)
	}
	if err := s.MarkIncomplete(ctx, playlist()[0]); err != nil {
		t.Fatalf("MarkIncomplete() error = %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestSession_MarkIncompleteClearsDuplicates(t *testing.T) {
	store := &fakeStore{set: storage.CompletionSet{"A", "A"}}
	s, _ := NewSession(context.Background(), store, playlist(), nil)

	if err := s.MarkIncomplete(context.Background(), playlist()[0]); err != nil {
		t.Fatalf("MarkIncomplete() error = %v", err)
	}
	if s.IsCompleted(playlist()[0]) {
		t.Error("A should no longer be completed")
	}
	if len(store.set) != 0 {
		t.Errorf("stored set = %v, want empty", store.set)
	}
}

func TestSession_Toggle(t *testing.T) {
	store := &fakeStore{}
	s, _ := NewSession(context.Background(), store, playlist(), nil)
	ctx := context.Background()
	a := playlist()[0]

	done, err := s.Toggle(ctx, a)
	if err != nil || !done {
		t.Fatalf("Toggle() = %v, %v; want true, nil", done, err)
	}
	done, err = s.Toggle(ctx, a)
	if err != nil || done {
		t.Fatalf("Toggle() = %v, %v; want false, nil", done, err)
	}
	if len(store.set) != 0 {
		t.Errorf("stored set = %v, want empty", store.set)
	}
}

func TestSession_FailedSaveKeepsState(t *testing.T) {
	saveErr := &storage.StorageError{Op: "write", Path: "x", Err: errors.New("disk full")}
	store := &fakeStore{set: storage.CompletionSet{"A"}}
	s, _ := NewSession(context.Background(), store, playlist(), nil)
	store.saveErr = saveErr
	ctx := context.Background()

	if err := s.MarkCompleted(ctx, playlist()[1]); !errors.Is(err, storage.ErrStorageWrite) {
		t.Errorf("MarkCompleted() error = %v, want ErrStorageWrite", err)
	}
	if s.IsCompleted(playlist()[1]) {
		t.Error("B should not be completed after a failed save")
	}

	done, err := s.Toggle(ctx, playlist()[0])
	if err == nil || !done {
		t.Errorf("Toggle() = %v, %v; want true with error", done, err)
	}
	if !reflect.DeepEqual(s.Completed(), storage.CompletionSet{"A"}) {
		t.Errorf("Completed() = %v, want [A]", s.Completed())
	}
}

func TestSession_CompletedIsACopy(t *testing.T) {
	store := &fakeStore{set: storage.CompletionSet{"A"}}
	s, _ := NewSession(context.Background(), store, playlist(), nil)

	c := s.Completed()
	c.Add("B")
	if s.IsCompleted(playlist()[1]) {
		t.Error("mutating Completed() leaked into the session")
	}
}

func TestSession_OrphansAndDuplicates(t *testing.T) {
	items := []youtube.PlaylistItem{
		item("a", "Intro", 60),
		item("b", "Q&A", 60),
		item("c", "Wrap up", 60),
		item("d", "Q&A", 60),
	}
	store := &fakeStore{set: storage.CompletionSet{"Old lesson", "Intro", "Removed"}}
	s, _ := NewSession(context.Background(), store, items, nil)

	if got := s.Orphans(); !reflect.DeepEqual(got, []string{"Old lesson", "Removed"}) {
		t.Errorf("Orphans() = %v", got)
	}
	if got := s.DuplicateTitles(); !reflect.DeepEqual(got, []string{"Q&A"}) {
		t.Errorf("DuplicateTitles() = %v", got)
	}
}

func TestSession_DistinctIDs(t *testing.T) {
	store := &fakeStore{}
	s1, _ := NewSession(context.Background(), store, nil, nil)
	s2, _ := NewSession(context.Background(), store, nil, nil)

	if s1.ID == s2.ID {
		t.Error("sessions should get distinct IDs")
	}
}

func TestSession_WithJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completed_videos.json")
	ctx := context.Background()

	s, err := NewSession(ctx, storage.NewJSONStore(path), playlist(), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := s.MarkCompleted(ctx, playlist()[0]); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	// A new session sees what the previous one saved.
	s2, err := NewSession(ctx, storage.NewJSONStore(path), playlist(), nil)
	if err != nil {
		t.Fatalf("second NewSession() error = %v", err)
	}
	if !s2.IsCompleted(playlist()[0]) {
		t.Error("completion did not survive a new session")
	}
}
