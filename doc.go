// Package ytprogress tracks how much of a YouTube playlist has been watched.
//
// It loads a playlist and every video's duration from the YouTube Data API,
// keeps the set of completed titles in a small JSON file, and derives the
// watched and remaining time from the two.
//
// Overview
//
// Open wires the pieces together from a config.Config:
//
//   - a youtube.APILoader that pages the playlist and looks up durations
//   - an optional bbolt cache of durations and descriptions
//   - a storage.JSONStore holding the completion set
//   - a progress.Session bound to the loaded playlist
//
// Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	t, err := ytprogress.Open(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer t.Close()
//
//	sum := t.Session.Summary()
//	fmt.Printf("%.1f%% watched, %s left\n", sum.Percent, progress.FormatDuration(sum.RemainingSeconds))
//
// Mark a video as watched:
//
//	item, err := progress.Find(t.Session.Items, "Introduction")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := t.Session.MarkCompleted(ctx, item); err != nil {
//		log.Fatal(err)
//	}
//
// Configuration
//
// Settings come from, in order of priority:
//
//   1. Environment variables (YTPROGRESS_*, plus YOUTUBE_API_KEY)
//   2. ytprogress.yaml in the working directory or ~/.config/ytprogress/
//   3. Default values
//
// Completion is keyed by video title. Items that share a title share their
// completion state; Session.DuplicateTitles reports them.
//
// Error Handling
//
//	if errors.Is(err, ytprogress.ErrQuotaExceeded) {
//		fmt.Println("daily API quota used up")
//	}
//
//	var fetchErr *ytprogress.CatalogFetchError
//	if errors.As(err, &fetchErr) {
//		fmt.Printf("%s failed for %s\n", fetchErr.Op, fetchErr.ID)
//	}
package ytprogress
