package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetCatalogStatus reports whether the catalog has loaded.
// GET /v1/catalog/status
func (h *Handler) GetCatalogStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.CatalogStatus(c.Request().Context()))
}

// GetTags returns the tag vocabulary for the tag picker, optionally
// narrowed by ?q=.
// GET /v1/catalog/tags
func (h *Handler) GetTags(c echo.Context) error {
	tags, err := h.service.Tags(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

// ListListings renders the listings for the session's parameters.
// GET /v1/listings
func (h *Handler) ListListings(c echo.Context) error {
	resp, err := h.service.Listings(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetListing returns one listing with its distance.
// GET /v1/listings/:listing_id
func (h *Handler) GetListing(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("listing_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "listing_id must be an integer"})
	}

	listing, err := h.service.Listing(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}
