package service

import (
	"context"
	"errors"

	"github.com/xiaot623/gogo/foodshare/internal/discovery"
	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/geo"
)

// NoResultsMessage accompanies an empty render.
const NoResultsMessage = "No results found. Try changing your search or filters."

// ErrListingNotFound is returned for an id absent from the catalog.
var ErrListingNotFound = errors.New("listing not found")

// CatalogStatus reports the catalog load state.
func (s *Service) CatalogStatus(ctx context.Context) *domain.CatalogStatusResponse {
	state, err := s.loader.State()
	resp := &domain.CatalogStatusResponse{State: state}
	if err != nil {
		resp.Error = err.Error()
	}
	if c, err := s.loader.Catalog(); err == nil {
		resp.Listings = c.Len()
	}
	return resp
}

// Tags returns the sorted tag vocabulary, narrowed to fuzzy matches of
// query when it is non-empty.
func (s *Service) Tags(ctx context.Context, query string) (*domain.TagsResponse, error) {
	c, err := s.loader.Catalog()
	if err != nil {
		return nil, err
	}
	return &domain.TagsResponse{Tags: discovery.SuggestTags(query, c.Tags())}, nil
}

// Listings renders the catalog for the session's current parameters and
// trial method.
func (s *Service) Listings(ctx context.Context) (*domain.ListingsResponse, error) {
	seq, c, err := s.session()
	if err != nil {
		return nil, err
	}

	params, method := seq.Params()
	result := s.pipeline.Apply(c, s.config.UserLocation, params, method)
	resp := &domain.ListingsResponse{
		Method:   result.Method,
		Params:   params,
		Listings: result.Listings,
		Count:    len(result.Listings),
		Empty:    result.Empty(),
	}
	if resp.Empty {
		resp.Message = NoResultsMessage
	}
	return resp, nil
}

// Listing returns one listing with its distance from the user.
func (s *Service) Listing(ctx context.Context, id int) (*domain.Listing, error) {
	c, err := s.loader.Catalog()
	if err != nil {
		return nil, err
	}
	l, ok := c.Get(id)
	if !ok {
		return nil, ErrListingNotFound
	}
	d := geo.Distance(s.config.UserLocation, l.Position())
	l.Distance = &d
	return &l, nil
}
