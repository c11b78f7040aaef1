// Package v1 provides the v1 HTTP handlers of the discovery service.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/repository"
	"github.com/xiaot623/gogo/foodshare/internal/service"
	"github.com/xiaot623/gogo/foodshare/internal/study"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Catalog API
	e.GET("/v1/catalog/status", h.GetCatalogStatus)
	e.GET("/v1/catalog/tags", h.GetTags)
	e.GET("/v1/listings", h.ListListings)
	e.GET("/v1/listings/:listing_id", h.GetListing)

	// Study session API
	e.GET("/v1/session", h.GetSession)
	e.POST("/v1/session/start", h.StartTrial)
	e.PUT("/v1/session/params", h.UpdateParams)
	e.POST("/v1/session/select", h.SelectListing)
	e.POST("/v1/session/continue", h.ContinueAfterBreak)
	e.POST("/v1/session/export", h.Export)
	e.GET("/v1/session/events", h.StreamEvents)

	// Export artifacts
	e.GET("/v1/exports", h.ListExports)
	e.GET("/v1/exports/:filename", h.DownloadExport)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// serviceError maps a service error to a status code and JSON body.
func serviceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrListingNotFound), errors.Is(err, repository.ErrExportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrLoadFailed), errors.Is(err, study.ErrConfiguration):
		status = http.StatusInternalServerError
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
