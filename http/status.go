package http

import (
	"net/http"
	"strconv"
	"time"
)

// IsServerError checks if status code is a server error (5xx).
func IsServerError(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}

// ShouldRetry determines if a request should be retried based on status code.
func ShouldRetry(statusCode int) bool {
	if IsServerError(statusCode) {
		return true
	}

	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return false
}

// RetryAfter extracts the Retry-After header value, given either in seconds
// or as an HTTP date. It returns 0 when the header is absent or unparseable.
func RetryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
