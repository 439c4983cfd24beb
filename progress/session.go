package progress

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"ytprogress/storage"
	"ytprogress/youtube"
)

// Session holds the playlist and the completion set for one run. It is
// rebuilt from the store at start and writes every change straight back.
type Session struct {
	ID    uuid.UUID
	Items []youtube.PlaylistItem

	store     storage.CompletionStore
	completed storage.CompletionSet
	logger    *slog.Logger
}

// NewSession loads the completion set from store and binds it to items.
func NewSession(ctx context.Context, store storage.CompletionStore, items []youtube.PlaylistItem, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	completed, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	s := &Session{
		ID:        id,
		Items:     items,
		store:     store,
		completed: completed,
		logger:    logger.With("session", id.String()),
	}
	s.logger.Debug("session started", "items", len(items), "completed", len(completed))

	if dups := s.DuplicateTitles(); len(dups) > 0 {
		s.logger.Warn("playlist has duplicate titles; their completion is shared", "titles", dups)
	}
	if orphans := s.Orphans(); len(orphans) > 0 {
		s.logger.Info("completed titles not in playlist", "titles", orphans)
	}
	return s, nil
}

// Summary aggregates the session's playlist against its completion set.
func (s *Session) Summary() Summary {
	return Aggregate(s.Items, s.completed)
}

// Completed returns a copy of the completion set.
func (s *Session) Completed() storage.CompletionSet {
	return s.completed.Clone()
}

// IsCompleted reports whether item's title is marked complete.
func (s *Session) IsCompleted(item youtube.PlaylistItem) bool {
	return s.completed.Contains(item.Title)
}

// MarkCompleted adds item's title to the set and saves it. Saving only
// happens when the set changes.
func (s *Session) MarkCompleted(ctx context.Context, item youtube.PlaylistItem) error {
	next := s.completed.Clone()
	if !next.Add(item.Title) {
		return nil
	}
	return s.commit(ctx, next, "marked completed", item)
}

// MarkIncomplete removes item's title from the set and saves it.
func (s *Session) MarkIncomplete(ctx context.Context, item youtube.PlaylistItem) error {
	next := s.completed.Clone()
	if !next.Remove(item.Title) {
		return nil
	}
	return s.commit(ctx, next, "marked incomplete", item)
}

// Toggle flips item's completion and returns the new state.
func (s *Session) Toggle(ctx context.Context, item youtube.PlaylistItem) (bool, error) {
	if s.IsCompleted(item) {
		if err := s.MarkIncomplete(ctx, item); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.MarkCompleted(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// commit saves next and adopts it. On failure the session keeps its previous set.
func (s *Session) commit(ctx context.Context, next storage.CompletionSet, msg string, item youtube.PlaylistItem) error {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("save completion set failed", "error", err)
		return err
	}
	s.completed = next
	s.logger.Info(msg, "video", item.ID, "title", item.Title)
	return nil
}

// Orphans returns completed titles that no longer appear in the playlist.
func (s *Session) Orphans() []string {
	titles := make(map[string]bool, len(s.Items))
	for _, it := range s.Items {
		titles[it.Title] = true
	}

	var out []string
	for _, t := range s.completed {
		if !titles[t] {
			out = append(out, t)
		}
	}
	return out
}

// DuplicateTitles returns titles shared by more than one playlist item, in
// playlist order. Such items cannot be completed independently.
func (s *Session) DuplicateTitles() []string {
	counts := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		counts[it.Title]++
	}

	var out []string
	for _, it := range s.Items {
		if counts[it.Title] > 1 {
			out = append(out, it.Title)
			counts[it.Title] = 0
		}
	}
	return out
}
