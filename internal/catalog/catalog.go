// Package catalog loads and holds the listing catalog.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

var (
	// ErrLoadFailed wraps any fetch or parse failure of the catalog document.
	ErrLoadFailed = errors.New("catalog load failed")
	// ErrNotReady is returned while the catalog is still loading.
	ErrNotReady = errors.New("catalog not ready")
)

// Offset parameters of the synthesized listing positions.
const (
	positionAngleStep = 18.0
	positionSpread    = 0.033
)

// Catalog is an immutable, position-augmented set of listings.
type Catalog struct {
	listings []domain.Listing
	byID     map[int]int
	tags     []string
}

type rawListing struct {
	ID          *int      `json:"id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Image       *string   `json:"image"`
}

// Parse decodes a catalog document and augments every entry with a
// position derived from its id around base.
func Parse(data []byte, base domain.Point) (*Catalog, error) {
	var raws []rawListing
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrLoadFailed, err)
	}

	c := &Catalog{
		listings: make([]domain.Listing, 0, len(raws)),
		byID:     make(map[int]int, len(raws)),
	}
	tagSet := make(map[string]struct{})

	for i, raw := range raws {
		if err := raw.validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrLoadFailed, i, err)
		}
		id := *raw.ID
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate id %d", ErrLoadFailed, i, id)
		}

		pos := PositionFor(id, base)
		tags := append([]string(nil), (*raw.Tags)...)
		for _, tag := range tags {
			tagSet[tag] = struct{}{}
		}

		c.byID[id] = len(c.listings)
		c.listings = append(c.listings, domain.Listing{
			ID:          id,
			Title:       *raw.Title,
			Description: *raw.Description,
			Tags:        tags,
			Image:       *raw.Image,
			Lat:         pos.Lat,
			Lon:         pos.Lon,
		})
	}

	c.tags = make([]string, 0, len(tagSet))
	for tag := range tagSet {
		c.tags = append(c.tags, tag)
	}
	sort.Strings(c.tags)

	return c, nil
}

func (r rawListing) validate() error {
	switch {
	case r.ID == nil:
		return errors.New("missing id")
	case r.Title == nil:
		return errors.New("missing title")
	case r.Description == nil:
		return errors.New("missing description")
	case r.Tags == nil:
		return errors.New("missing tags")
	case r.Image == nil:
		return errors.New("missing image")
	}
	return nil
}

// PositionFor returns the synthesized position of a listing id.
// The same id always maps to the same point.
func PositionFor(id int, base domain.Point) domain.Point {
	angle := float64(id) * positionAngleStep
	return domain.Point{
		Lat: base.Lat + math.Sin(angle)*positionSpread,
		Lon: base.Lon + math.Cos(angle)*positionSpread,
	}
}

// Listings returns a copy of the catalog in load order.
func (c *Catalog) Listings() []domain.Listing {
	out := make([]domain.Listing, len(c.listings))
	for i, l := range c.listings {
		l.Tags = append([]string(nil), l.Tags...)
		out[i] = l
	}
	return out
}

// Get returns the listing with id.
func (c *Catalog) Get(id int) (domain.Listing, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Listing{}, false
	}
	l := c.listings[idx]
	l.Tags = append([]string(nil), l.Tags...)
	return l, true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}

// Tags returns the sorted, de-duplicated tag vocabulary.
func (c *Catalog) Tags() []string {
	return append([]string(nil), c.tags...)
}
