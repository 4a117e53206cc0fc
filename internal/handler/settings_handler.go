package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// SettingsHandler handles per-user settings
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// SettingsResponse represents user settings in API responses
type SettingsResponse struct {
	Theme     string     `json:"theme"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UpdateSettingsRequest represents the request body for changing settings
type UpdateSettingsRequest struct {
	Theme string `json:"theme" enums:"light,dark"`
}

func toSettingsResponse(s *domain.Settings) SettingsResponse {
	resp := SettingsResponse{Theme: string(s.Theme)}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// GetSettings handles GET /api/v1/settings
// @Summary Get settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SettingsResponse
// @Failure 401 {object} ProblemDetails
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	settings, err := h.settingsService.Get(c.Request().Context(), subject)
	if err != nil {
		return handleServiceError(c, err, "Failed to get settings")
	}
	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings handles PUT /api/v1/settings
// @Summary Change the theme
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Settings"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} ProblemDetails
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	settings, err := h.settingsService.SetTheme(c.Request().Context(), subject, req.Theme)
	if err != nil {
		return handleServiceError(c, err, "Failed to update settings")
	}
	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}
