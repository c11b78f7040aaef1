package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Export mints a results document.
// POST /v1/session/export
func (h *Handler) Export(c echo.Context) error {
	artifact, err := h.service.Export(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, domain.ExportResponse{
		ExportID: artifact.ExportID,
		Filename: artifact.Filename,
		Document: artifact.Document,
	})
}

// ListExports lists the artifacts minted in the session.
// GET /v1/exports
func (h *Handler) ListExports(c echo.Context) error {
	resp, err := h.service.ListExports(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DownloadExport serves a minted artifact as a file download.
// GET /v1/exports/:filename
func (h *Handler) DownloadExport(c echo.Context) error {
	artifact, err := h.service.GetExport(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return serviceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, artifact.Document)
}
