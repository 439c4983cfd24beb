// Package progress computes watched and remaining time over a playlist and
// tracks the user's completion set for one session.
package progress

import (
	"fmt"

	"ytprogress/storage"
	"ytprogress/youtube"
)

// Summary is the derived progress over a playlist. It is never stored.
type Summary struct {
	TotalSeconds     float64 `json:"total_seconds"`
	CompletedSeconds float64 `json:"completed_seconds"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	// Percent is CompletedSeconds/TotalSeconds*100, or 0 for an empty playlist.
	Percent float64 `json:"percent"`
	// ItemCount is the number of playlist items.
	ItemCount int `json:"item_count"`
	// MarkedCount is the size of the completion set, orphans included.
	MarkedCount int `json:"marked_count"`
}

// Aggregate sums durations over items, counting an item as completed when its
// title is in completed.
func Aggregate(items []youtube.PlaylistItem, completed storage.CompletionSet) Summary {
	var s Summary
	for _, it := range items {
		s.TotalSeconds += it.DurationSeconds
		if completed.Contains(it.Title) {
			s.CompletedSeconds += it.DurationSeconds
		}
	}
	s.RemainingSeconds = s.TotalSeconds - s.CompletedSeconds
	if s.TotalSeconds > 0 {
		s.Percent = s.CompletedSeconds / s.TotalSeconds * 100
	}
	s.ItemCount = len(items)
	s.MarkedCount = len(completed)
	return s
}

// FormatDuration renders seconds as "<h>h <m>m", or "<m>m" under an hour.
// Seconds are truncated; negative input is treated as zero.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
