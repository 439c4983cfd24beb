package ytprogress

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"ytprogress/config"
	yhttp "ytprogress/http"
	"ytprogress/internal/cache"
	"ytprogress/internal/retry"
	"ytprogress/progress"
	"ytprogress/storage"
	"ytprogress/youtube"
)

// Tracker is a loaded playlist with its completion session and the
// resources behind it.
type Tracker struct {
	Session    *progress.Session
	PlaylistID string

	loader  youtube.PlaylistLoader
	closers []io.Closer
	logger  *slog.Logger
}

type options struct {
	logger   *slog.Logger
	endpoint string
	loader   youtube.PlaylistLoader
	store    storage.CompletionStore
}

// Option customizes Open.
type Option func(*options)

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEndpoint points the API loader at a different base URL.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithLoader replaces the API loader. The cache and API settings are ignored.
func WithLoader(l youtube.PlaylistLoader) Option {
	return func(o *options) { o.loader = l }
}

// WithStore replaces the JSON completion store.
func WithStore(s storage.CompletionStore) Option {
	return func(o *options) { o.store = s }
}

// Open loads cfg.PlaylistID and the completion set and binds them into a
// session. The playlist is fetched in full before the session exists.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Tracker, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t := &Tracker{PlaylistID: cfg.PlaylistID, logger: o.logger}

	loader := o.loader
	if loader == nil {
		l, err := t.newAPILoader(ctx, cfg, o)
		if err != nil {
			t.Close()
			return nil, err
		}
		loader = l
	}
	t.loader = loader

	items, err := loader.LoadPlaylist(ctx, cfg.PlaylistID)
	if err != nil {
		t.Close()
		return nil, err
	}

	store := o.store
	if store == nil {
		store = storage.NewJSONStore(cfg.CompletedFile)
	}
	session, err := progress.NewSession(ctx, store, items, o.logger)
	if err != nil {
		t.Close()
		return nil, err
	}
	t.Session = session
	return t, nil
}

func (t *Tracker) newAPILoader(ctx context.Context, cfg *config.Config, o options) (*youtube.APILoader, error) {
	httpCfg := yhttp.DefaultConfig()
	httpCfg.RequestsPerSecond = cfg.RequestsPerSecond

	rc := retry.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     cfg.BackoffMultiplier,
		JitterFraction: retry.DefaultConfig().JitterFraction,
	}

	lc := youtube.LoaderConfig{
		Endpoint:     o.endpoint,
		HTTP:         httpCfg,
		Retry:        rc,
		BatchLookups: cfg.BatchLookups,
		Logger:       o.logger,
	}
	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, c)
		lc.Cache = c
	}

	l, err := youtube.NewAPILoader(ctx, cfg.APIKey, lc)
	if err != nil {
		return nil, err
	}
	t.closers = append(t.closers, l)
	return l, nil
}

// Logger returns the logger the tracker was opened with.
func (t *Tracker) Logger() *slog.Logger {
	return t.logger
}

// Find resolves query against the playlist. See progress.Find.
func (t *Tracker) Find(query string) (youtube.PlaylistItem, error) {
	return progress.Find(t.Session.Items, query)
}

// Describe fetches the description of item.
func (t *Tracker) Describe(ctx context.Context, item youtube.PlaylistItem) (string, error) {
	return t.loader.FetchDescription(ctx, item.ID)
}

// QuotaUsed reports the API quota spent, or 0 for a replaced loader.
func (t *Tracker) QuotaUsed() int {
	if l, ok := t.loader.(*youtube.APILoader); ok {
		return l.QuotaUsed()
	}
	return 0
}

// Close releases the loader and the cache, in reverse order of opening.
func (t *Tracker) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}
