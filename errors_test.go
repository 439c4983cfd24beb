package ytprogress

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ytprogress/internal/retry"
	"ytprogress/youtube"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("connection reset"), true},
		{"permanent", retry.Permanent(ErrPlaylistNotFound), false},
		{"wrapped permanent", &CatalogFetchError{Op: "list playlist items", ID: "PL", Err: retry.Permanent(ErrQuotaExceeded)}, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelAliases(t *testing.T) {
	err := &youtube.CatalogFetchError{Op: "get content details", ID: "v1", Err: youtube.ErrVideoNotFound}

	if !errors.Is(err, ErrVideoNotFound) {
		t.Error("ErrVideoNotFound should match the youtube sentinel")
	}
	var fe *CatalogFetchError
	if !errors.As(err, &fe) || fe.ID != "v1" {
		t.Errorf("errors.As() = %v", fe)
	}
}
