// Package discovery ranks and filters the listing catalog for display.
package discovery

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// DefaultThreshold accepts moderately misspelled or partial queries.
const DefaultThreshold = 0.4

const (
	// prefixPenalty is added when a query token only matches the start of a word.
	prefixPenalty = 0.1
	// descriptionPenalty ranks description hits below title and tag hits.
	descriptionPenalty = 0.05
	// minFuzzyPrefix is the shortest query token compared against word prefixes
	// with edit tolerance.
	minFuzzyPrefix = 3
)

// Matcher scores listings against a free-text query. Scores run from 0
// (exact) to 1 (unrelated); a listing matches when its score is at or
// below Threshold.
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher with the given threshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Match is a scored listing.
type Match struct {
	Listing domain.Listing
	Score   float64
}

// Rank returns the listings matching query ordered best first. Ties keep
// input order. An empty query matches nothing; callers treat it as identity.
func (m Matcher) Rank(query string, listings []domain.Listing) []Match {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(listings))
	for _, l := range listings {
		score := m.score(qTokens, l)
		if score <= m.Threshold {
			matches = append(matches, Match{Listing: l, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches
}

// Score returns the score of a single listing.
func (m Matcher) Score(query string, l domain.Listing) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 1
	}
	return m.score(qTokens, l)
}

func (m Matcher) score(qTokens []string, l domain.Listing) float64 {
	title := tokenize(l.Title)
	desc := tokenize(l.Description)
	var tags []string
	for _, tag := range l.Tags {
		tags = append(tags, tokenize(tag)...)
	}

	var total float64
	for _, q := range qTokens {
		best := bestTokenScore(q, title)
		if s := bestTokenScore(q, tags); s < best {
			best = s
		}
		if s := bestTokenScore(q, desc) + descriptionPenalty; s < best {
			best = s
		}
		if best > 1 {
			best = 1
		}
		total += best
	}
	return total / float64(len(qTokens))
}

func bestTokenScore(q string, words []string) float64 {
	best := 1.0
	for _, w := range words {
		if s := tokenScore(q, w); s < best {
			best = s
			if best == 0 {
				break
			}
		}
	}
	return best
}

// tokenScore compares one query token to one word.
func tokenScore(q, w string) float64 {
	if q == w {
		return 0
	}
	if strings.HasPrefix(w, q) {
		return prefixPenalty
	}

	qLen := utf8.RuneCountInString(q)
	wLen := utf8.RuneCountInString(w)
	longest := qLen
	if wLen > longest {
		longest = wLen
	}
	score := float64(levenshtein.ComputeDistance(q, w)) / float64(longest)

	if qLen >= minFuzzyPrefix && wLen > qLen {
		head := string([]rune(w)[:qLen])
		if s := float64(levenshtein.ComputeDistance(q, head))/float64(qLen) + prefixPenalty; s < score {
			score = s
		}
	}
	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
