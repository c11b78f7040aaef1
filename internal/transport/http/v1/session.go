package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// GetSession returns the study session snapshot.
// GET /v1/session
func (h *Handler) GetSession(c echo.Context) error {
	snap, err := h.service.Session(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// StartTrial starts the pending trial.
// POST /v1/session/start
func (h *Handler) StartTrial(c echo.Context) error {
	resp, err := h.service.StartTrial(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ContinueAfterBreak ends the break between methods.
// POST /v1/session/continue
func (h *Handler) ContinueAfterBreak(c echo.Context) error {
	resp, err := h.service.ContinueAfterBreak(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateParams changes the query, tags or distance.
// PUT /v1/session/params
func (h *Handler) UpdateParams(c echo.Context) error {
	var req domain.UpdateParamsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Query == nil && req.Tags == nil && req.MaxDistanceKm == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "one of query, tags or max_distance_km is required"})
	}

	resp, err := h.service.UpdateParams(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// SelectListing records a listing selection.
// POST /v1/session/select
func (h *Handler) SelectListing(c echo.Context) error {
	var req domain.SelectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ListingID == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "listing_id is required"})
	}

	resp, err := h.service.Select(c.Request().Context(), *req.ListingID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
