package youtube

import (
	"fmt"
	"strings"

	"github.com/sosodev/duration"
)

// ParseDuration converts an ISO-8601 duration such as "PT1H2M3S" into seconds.
// Live and upcoming videos report "P0D", which parses to zero.
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration", ErrMalformedResponse)
	}

	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %v", ErrMalformedResponse, s, err)
	}
	if d.Negative {
		return 0, fmt.Errorf("%w: negative duration %q", ErrMalformedResponse, s)
	}

	return d.ToTimeDuration().Seconds(), nil
}
