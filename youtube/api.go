package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	yhttp "ytprogress/http"
	"ytprogress/internal/retry"
)

const (
	// maxPageSize is the largest page playlistItems.list and videos.list accept.
	maxPageSize = 50

	opListItems      = "list playlist items"
	opContentDetails = "get content details"
	opSnippet        = "get snippet"
)

// LoaderConfig configures an APILoader.
type LoaderConfig struct {
	// Endpoint overrides the API base URL (tests point it at an httptest server).
	Endpoint string
	// HTTP configures pacing, timeouts and the transport. Nil uses yhttp.DefaultConfig.
	HTTP *yhttp.Config
	// Retry bounds the attempts made for each API call.
	Retry retry.Config
	// BatchLookups fetches durations for up to 50 videos per call instead of one call per video.
	BatchLookups bool
	// Cache, if set, serves durations and descriptions before calling the API.
	Cache MetadataCache
	// Logger receives progress and retry messages. Nil discards them.
	Logger *slog.Logger
}

// APILoader implements PlaylistLoader using YouTube Data API v3.
type APILoader struct {
	service *ytapi.Service
	client  *yhttp.Client
	retry   retry.Config
	batch   bool
	cache   MetadataCache
	logger  *slog.Logger

	quotaUsed int
}

// NewAPILoader creates a loader authenticated with apiKey.
func NewAPILoader(ctx context.Context, apiKey string, cfg LoaderConfig) (*APILoader, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	httpCfg := yhttp.DefaultConfig()
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		httpCfg = &c
	}
	httpCfg.APIKey = apiKey
	client := yhttp.New(httpCfg)

	opts := []option.ClientOption{option.WithHTTPClient(client.HTTPClient())}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &APILoader{
		service: service,
		client:  client,
		retry:   cfg.Retry,
		batch:   cfg.BatchLookups,
		cache:   cfg.Cache,
		logger:  logger,
	}, nil
}

// Close releases idle HTTP connections.
func (l *APILoader) Close() error {
	return l.client.Close()
}

// QuotaUsed returns the quota units spent by this loader. Every list call costs one unit.
func (l *APILoader) QuotaUsed() int {
	return l.quotaUsed
}

// LoadPlaylist pages through the playlist and then looks up each video's duration.
func (l *APILoader) LoadPlaylist(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, &CatalogFetchError{Op: opListItems, Err: ErrInvalidPlaylistID}
	}

	start := time.Now()
	items, err := l.listPlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if l.batch {
		err = l.fillDurationsBatched(ctx, items)
	} else {
		err = l.fillDurations(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("playlist loaded",
		"playlist", playlistID,
		"items", len(items),
		"quota_used", l.quotaUsed,
		"elapsed", time.Since(start))
	return items, nil
}

// listPlaylistItems follows nextPageToken until the playlist is exhausted.
func (l *APILoader) listPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem
	pageToken := ""

	for {
		var resp *ytapi.PlaylistItemListResponse
		err := l.do(ctx, func(ctx context.Context) error {
			call := l.service.PlaylistItems.List([]string{"snippet"}).
				PlaylistId(playlistID).
				MaxResults(maxPageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			r, err := call.Do()
			l.quotaUsed++
			if err != nil {
				return classifyAPIError(err, ErrPlaylistNotFound)
			}
			resp = r
			return nil
		})
		if err != nil {
			return nil, &CatalogFetchError{Op: opListItems, ID: playlistID, Err: err}
		}

		for _, it := range resp.Items {
			if it.Snippet == nil || it.Snippet.ResourceId == nil || it.Snippet.ResourceId.VideoId == "" {
				return nil, &CatalogFetchError{
					Op:  opListItems,
					ID:  playlistID,
					Err: fmt.Errorf("%w: playlist item %q has no video id", ErrMalformedResponse, it.Id),
				}
			}
			items = append(items, PlaylistItem{
				ID:       it.Snippet.ResourceId.VideoId,
				Title:    it.Snippet.Title,
				Position: len(items),
			})
		}

		l.logger.Debug("playlist page fetched", "playlist", playlistID, "page_items", len(resp.Items), "total", len(items))

		if resp.NextPageToken == "" {
			break
		}
		if resp.NextPageToken == pageToken {
			return nil, &CatalogFetchError{
				Op:  opListItems,
				ID:  playlistID,
				Err: fmt.Errorf("%w: page token %q repeated", ErrMalformedResponse, pageToken),
			}
		}
		pageToken = resp.NextPageToken
	}

	return items, nil
}

// fillDurations makes one videos.list call per item.
func (l *APILoader) fillDurations(ctx context.Context, items []PlaylistItem) error {
	for i := range items {
		seconds, err := l.fetchDuration(ctx, items[i].ID)
		if err != nil {
			return err
		}
		items[i].DurationSeconds = seconds
	}
	return nil
}

func (l *APILoader) fetchDuration(ctx context.Context, videoID string) (float64, error) {
	if seconds, ok := l.cachedDuration(videoID); ok {
		return seconds, nil
	}

	var raw string
	err := l.do(ctx, func(ctx context.Context) error {
		resp, err := l.service.Videos.List([]string{"contentDetails"}).Id(videoID).Context(ctx).Do()
		l.quotaUsed++
		if err != nil {
			return classifyAPIError(err, ErrVideoNotFound)
		}
		if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
			return retry.Permanent(ErrVideoNotFound)
		}
		raw = resp.Items[0].ContentDetails.Duration
		return nil
	})
	if err != nil {
		return 0, &CatalogFetchError{Op: opContentDetails, ID: videoID, Err: err}
	}

	seconds, err := ParseDuration(raw)
	if err != nil {
		return 0, &CatalogFetchError{Op: opContentDetails, ID: videoID, Err: err}
	}
	l.storeDuration(videoID, seconds)
	return seconds, nil
}

// fillDurationsBatched looks up uncached durations maxPageSize IDs at a time.
func (l *APILoader) fillDurationsBatched(ctx context.Context, items []PlaylistItem) error {
	durations := make(map[string]float64, len(items))
	var pending []string
	seen := make(map[string]bool, len(items))

	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if seconds, ok := l.cachedDuration(it.ID); ok {
			durations[it.ID] = seconds
			continue
		}
		pending = append(pending, it.ID)
	}

	for start := 0; start < len(pending); start += maxPageSize {
		end := start + maxPageSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		var resp *ytapi.VideoListResponse
		err := l.do(ctx, func(ctx context.Context) error {
			r, err := l.service.Videos.List([]string{"contentDetails"}).
				Id(chunk...).
				Context(ctx).
				Do()
			l.quotaUsed++
			if err != nil {
				return classifyAPIError(err, ErrVideoNotFound)
			}
			resp = r
			return nil
		})
		if err != nil {
			return &CatalogFetchError{Op: opContentDetails, ID: strings.Join(chunk, ","), Err: err}
		}

		for _, v := range resp.Items {
			if v.ContentDetails == nil {
				continue
			}
			seconds, err := ParseDuration(v.ContentDetails.Duration)
			if err != nil {
				return &CatalogFetchError{Op: opContentDetails, ID: v.Id, Err: err}
			}
			durations[v.Id] = seconds
			l.storeDuration(v.Id, seconds)
		}
	}

	for i := range items {
		seconds, ok := durations[items[i].ID]
		if !ok {
			return &CatalogFetchError{Op: opContentDetails, ID: items[i].ID, Err: ErrVideoNotFound}
		}
		items[i].DurationSeconds = seconds
	}
	return nil
}

// FetchDescription returns the video's description from its snippet.
func (l *APILoader) FetchDescription(ctx context.Context, videoID string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", &CatalogFetchError{Op: opSnippet, Err: ErrVideoNotFound}
	}
	if l.cache != nil {
		desc, ok, err := l.cache.Description(videoID)
		if err != nil {
			l.logger.Warn("cache lookup failed", "video", videoID, "error", err)
		}
		if ok {
			return desc, nil
		}
	}

	var desc string
	err := l.do(ctx, func(ctx context.Context) error {
		resp, err := l.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
		l.quotaUsed++
		if err != nil {
			return classifyAPIError(err, ErrVideoNotFound)
		}
		if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
			return retry.Permanent(ErrVideoNotFound)
		}
		desc = resp.Items[0].Snippet.Description
		return nil
	})
	if err != nil {
		return "", &CatalogFetchError{Op: opSnippet, ID: videoID, Err: err}
	}

	if l.cache != nil {
		if err := l.cache.PutDescription(videoID, desc); err != nil {
			l.logger.Warn("cache description failed", "video", videoID, "error", err)
		}
	}
	return desc, nil
}

// cachedDuration consults the cache. A failed lookup is logged and treated as a miss.
func (l *APILoader) cachedDuration(videoID string) (float64, bool) {
	if l.cache == nil {
		return 0, false
	}
	seconds, ok, err := l.cache.Duration(videoID)
	if err != nil {
		l.logger.Warn("cache lookup failed", "video", videoID, "error", err)
	}
	return seconds, ok
}

func (l *APILoader) storeDuration(videoID string, seconds float64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.PutDuration(videoID, seconds); err != nil {
		l.logger.Warn("cache duration failed", "video", videoID, "error", err)
	}
}

// do runs fn under the loader's retry policy, logging each retry.
func (l *APILoader) do(ctx context.Context, fn func(context.Context) error) error {
	cfg := l.retry
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		l.logger.Warn("youtube api call failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	}
	return retry.Do(ctx, cfg, apiErrorClassifier, fn)
}

// classifyAPIError maps API errors onto package sentinels and marks the
// ones that will not succeed on retry as permanent.
func classifyAPIError(err error, notFound error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded":
			return retry.Permanent(fmt.Errorf("%w: %v", ErrQuotaExceeded, err))
		case "rateLimitExceeded", "userRateLimitExceeded", "backendError":
			return retry.After(err, yhttp.RetryAfter(gerr.Header))
		}
	}

	if gerr.Code == http.StatusNotFound {
		return retry.Permanent(fmt.Errorf("%w: %v", notFound, err))
	}
	if !yhttp.ShouldRetry(gerr.Code) {
		return retry.Permanent(err)
	}
	return retry.After(err, yhttp.RetryAfter(gerr.Header))
}

// apiErrorClassifier determines if an API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	return retry.IsRetryable(err)
}
