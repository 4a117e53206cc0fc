package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExportHandler handles snapshot exports
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export handles POST /api/v1/dashboard/export
// @Summary Export the ledger
// @Description Uploads a JSON snapshot and returns a temporary download link
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 401 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /dashboard/export [post]
func (h *ExportHandler) Export(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	result, err := h.exportService.Export(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to export dashboard")
	}

	log.Info().Str("subject", cred.Subject).Str("key", result.Key).Msg("Dashboard exported")
	return c.JSON(http.StatusCreated, result)
}
