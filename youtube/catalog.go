// Package youtube loads playlists and their video metadata from the YouTube Data API.
package youtube

import (
	"context"
	"errors"
)

// Sentinel errors for catalog operations.
var (
	ErrMissingAPIKey     = errors.New("youtube: api key required")
	ErrInvalidPlaylistID = errors.New("youtube: invalid playlist id")
	ErrPlaylistNotFound  = errors.New("youtube: playlist not found")
	ErrVideoNotFound     = errors.New("youtube: video not found")
	ErrQuotaExceeded     = errors.New("youtube: quota exceeded")
	ErrMalformedResponse = errors.New("youtube: malformed response")
)

// PlaylistLoader fetches playlists from a video catalog.
type PlaylistLoader interface {
	// LoadPlaylist returns every item of the playlist, in playlist order,
	// with durations filled in. Any failure aborts the whole load.
	LoadPlaylist(ctx context.Context, playlistID string) ([]PlaylistItem, error)

	// FetchDescription returns the description of a single video.
	FetchDescription(ctx context.Context, videoID string) (string, error)
}

// MetadataCache stores per-video metadata between runs. Playlist membership
// is never cached. Implementations report misses with ok == false and a
// failed lookup with a non-nil error.
type MetadataCache interface {
	Duration(videoID string) (seconds float64, ok bool, err error)
	PutDuration(videoID string, seconds float64) error
	Description(videoID string) (description string, ok bool, err error)
	PutDescription(videoID, description string) error
}

// PlaylistItem is one video of a playlist.
type PlaylistItem struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the title shown in the playlist. Completion is tracked by title.
	Title string `json:"title"`

	// DurationSeconds is the video length in seconds.
	DurationSeconds float64 `json:"duration_seconds"`

	// Position is the zero-based index within the playlist.
	Position int `json:"position"`
}

// WatchURL returns the full YouTube URL for this video.
func (p PlaylistItem) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + p.ID
}

// EmbedURL returns the URL of the embeddable player for this video.
func (p PlaylistItem) EmbedURL() string {
	return "https://www.youtube.com/embed/" + p.ID
}

// CatalogFetchError wraps catalog errors with context about what failed.
// Use errors.As() to extract this error type and get operation details:
//
//	var fetchErr *youtube.CatalogFetchError
//	if errors.As(err, &fetchErr) {
//		fmt.Printf("%s %s failed: %v\n", fetchErr.Op, fetchErr.ID, fetchErr.Err)
//	}
type CatalogFetchError struct {
	// Op is the API operation ("list playlist items", "get content details", "get snippet").
	Op string
	// ID is the playlist or video ID involved.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the fetch error.
func (e *CatalogFetchError) Error() string {
	if e.ID == "" {
		return "youtube: " + e.Op + ": " + e.Err.Error()
	}
	return "youtube: " + e.Op + " " + e.ID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *CatalogFetchError) Unwrap() error { return e.Err }
