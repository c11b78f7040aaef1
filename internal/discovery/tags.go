package discovery

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// SuggestTags filters the tag vocabulary for the tag picker's typeahead,
// best match first. An empty query returns every tag in vocabulary order.
func SuggestTags(query string, tags []string) []string {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return append([]string{}, tags...)
	}
	matches := fuzzy.Find(query, tags)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
