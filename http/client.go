// Package http builds the HTTP client used for YouTube Data API calls. It
// paces requests with a token bucket and attaches the API key to every call.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds HTTP client configuration.
type Config struct {
	// APIKey is appended to every request as the "key" query parameter.
	APIKey string

	// Timeout for individual HTTP requests
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size (default 1).
	Burst int

	// User agent for HTTP requests
	UserAgent string

	// Base is the underlying transport. Nil uses a pooled *http.Transport.
	Base http.RoundTripper

	// Connection pool configuration, ignored when Base is set
	Transport TransportConfig
}

// TransportConfig configures the HTTP transport (connection pooling).
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is the maximum amount of time an idle connection can remain open.
	IdleConnTimeout time.Duration

	// ForceAttemptHTTP2 forces HTTP/2 for connections to servers that don't explicitly support it.
	ForceAttemptHTTP2 bool
}

// DefaultConfig returns sensible defaults for the Data API. The API key is left empty.
func DefaultConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
		Burst:             1,
		UserAgent:         "ytprogress/1.0",
		Transport:         DefaultTransportConfig(),
	}
}

// DefaultTransportConfig returns sensible defaults for HTTP transport configuration.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// Client wraps an *http.Client whose transport paces requests and injects the API key.
type Client struct {
	base    *http.Client
	config  *Config
	limiter *rate.Limiter
}

// New creates a new HTTP client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	base := cfg.Base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.Transport.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
			ForceAttemptHTTP2:   cfg.Transport.ForceAttemptHTTP2,
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	c := &Client{config: cfg, limiter: limiter}
	c.base = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &apiTransport{
			base:      base,
			apiKey:    cfg.APIKey,
			userAgent: cfg.UserAgent,
			limiter:   limiter,
		},
	}
	return c
}

// HTTPClient returns the configured client, suitable for option.WithHTTPClient.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.base.CloseIdleConnections()
	return nil
}

// apiTransport is the RoundTripper behind Client.
type apiTransport struct {
	base      http.RoundTripper
	apiKey    string
	userAgent string
	limiter   *rate.Limiter
}

// RoundTrip waits for a token, then forwards a copy of req carrying the key and user agent.
func (t *apiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.wait(req.Context()); err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	if t.apiKey != "" {
		q := out.URL.Query()
		q.Set("key", t.apiKey)
		out.URL.RawQuery = q.Encode()
	}
	if t.userAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(out)
}

func (t *apiTransport) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	err := t.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("rate limit: %w", ctxErr)
	}
	// The limiter gives up early when the deadline cannot be met.
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("rate limit: %w: %v", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("rate limit: %w", err)
}
