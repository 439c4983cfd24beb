package progress

import (
	"errors"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"ytprogress/youtube"
)

// ErrNoMatch is returned when no playlist item matches a query.
var ErrNoMatch = errors.New("progress: no matching item")

// titleSource adapts lowercased playlist titles to fuzzy.Source.
type titleSource []youtube.PlaylistItem

func (t titleSource) String(i int) string { return strings.ToLower(t[i].Title) }

func (t titleSource) Len() int { return len(t) }

// Find resolves query to one item: an exact video ID, then an exact
// case-insensitive title, then the best fuzzy title match.
func Find(items []youtube.PlaylistItem, query string) (youtube.PlaylistItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return youtube.PlaylistItem{}, ErrNoMatch
	}

	for _, it := range items {
		if it.ID == query {
			return it, nil
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Title, query) {
			return it, nil
		}
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), titleSource(items))
	if len(matches) == 0 {
		return youtube.PlaylistItem{}, ErrNoMatch
	}
	return items[matches[0].Index], nil
}

// Filter returns the items whose title contains the characters of query in
// order, ignoring case. An empty query returns every item.
func Filter(items []youtube.PlaylistItem, query string) []youtube.PlaylistItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	var out []youtube.PlaylistItem
	for _, it := range items {
		if fuzzysearch.MatchFold(query, it.Title) {
			out = append(out, it)
		}
	}
	return out
}
