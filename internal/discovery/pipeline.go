package discovery

import (
	"sync"

	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/geo"
)

// Result is one render of the pipeline.
type Result struct {
	Method   domain.Method    `json:"method"`
	Listings []domain.Listing `json:"listings"`
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return len(r.Listings) == 0
}

// Pipeline applies search or filter over the catalog. The distance
// augmented catalog is memoized per catalog and user location.
type Pipeline struct {
	matcher Matcher

	mu       sync.Mutex
	memoCat  *catalog.Catalog
	memoUser domain.Point
	memo     []domain.Listing
}

// NewPipeline creates a pipeline using matcher for search ranking.
func NewPipeline(matcher Matcher) *Pipeline {
	return &Pipeline{matcher: matcher}
}

// Apply renders the listings for one parameter set and method. Only the
// active method's stage runs.
func (p *Pipeline) Apply(c *catalog.Catalog, user domain.Point, params domain.FilterParameters, method domain.Method) Result {
	listings := p.withDistances(c, user)

	switch method {
	case domain.MethodSearch:
		listings = Search(p.matcher, listings, params.Query)
	case domain.MethodFilter:
		listings = Filter(listings, params.MaxDistanceKm, params.Tags)
	}

	if listings == nil {
		listings = []domain.Listing{}
	}
	return Result{Method: method, Listings: listings}
}

// WithDistances returns the catalog with Distance set relative to user.
func (p *Pipeline) WithDistances(c *catalog.Catalog, user domain.Point) []domain.Listing {
	return p.withDistances(c, user)
}

func (p *Pipeline) withDistances(c *catalog.Catalog, user domain.Point) []domain.Listing {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.memoCat != c || p.memoUser != user || p.memo == nil {
		listings := c.Listings()
		for i := range listings {
			d := geo.Distance(user, listings[i].Position())
			listings[i].Distance = &d
		}
		p.memoCat = c
		p.memoUser = user
		p.memo = listings
	}

	out := make([]domain.Listing, len(p.memo))
	copy(out, p.memo)
	return out
}

// Search ranks listings by query. An empty query returns listings unchanged.
func Search(m Matcher, listings []domain.Listing, query string) []domain.Listing {
	if len(tokenize(query)) == 0 {
		return listings
	}
	matches := m.Rank(query, listings)
	out := make([]domain.Listing, len(matches))
	for i, match := range matches {
		out[i] = match.Listing
	}
	return out
}

// Filter keeps listings within maxDistanceKm that share at least one of
// tags. No tags means no tag constraint. Listings without a distance are
// dropped. Catalog order is kept.
func Filter(listings []domain.Listing, maxDistanceKm float64, tags []string) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Distance == nil || *l.Distance > maxDistanceKm {
			continue
		}
		if len(tags) > 0 && !l.HasAnyTag(tags) {
			continue
		}
		out = append(out, l)
	}
	return out
}
