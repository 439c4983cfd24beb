package ytprogress

import (
	"ytprogress/internal/retry"
	"ytprogress/progress"
	"ytprogress/storage"
	"ytprogress/youtube"
)

// Type aliases for convenient error handling.
type (
	// CatalogFetchError wraps a failed YouTube API operation.
	CatalogFetchError = youtube.CatalogFetchError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// StorageError wraps errors during completion store operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	ErrMissingAPIKey     = youtube.ErrMissingAPIKey
	ErrInvalidPlaylistID = youtube.ErrInvalidPlaylistID
	ErrPlaylistNotFound  = youtube.ErrPlaylistNotFound
	ErrVideoNotFound     = youtube.ErrVideoNotFound
	ErrQuotaExceeded     = youtube.ErrQuotaExceeded
	ErrMalformedResponse = youtube.ErrMalformedResponse

	// Storage errors
	ErrStorageRead    = storage.ErrStorageRead
	ErrStorageWrite   = storage.ErrStorageWrite
	ErrStorageCorrupt = storage.ErrStorageCorrupt

	// ErrNoMatch indicates a query matched no playlist item.
	ErrNoMatch = progress.ErrNoMatch
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like ErrPlaylistNotFound.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
