package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles save status and page-exit requests
type SessionHandler struct {
	ledgerService *service.LedgerService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(ledgerService *service.LedgerService) *SessionHandler {
	return &SessionHandler{ledgerService: ledgerService}
}

// FlushResponse reports whether a save was started
type FlushResponse struct {
	Saving bool `json:"saving"`
}

// CloseResponse reports whether a session was open
type CloseResponse struct {
	Closed bool `json:"closed"`
}

// GetStatus handles GET /api/v1/session
func (h *SessionHandler) GetStatus(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	status, err := h.ledgerService.SyncStatus(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to get session status")
	}
	return c.JSON(http.StatusOK, status)
}

// Flush handles POST /api/v1/session/flush
// Sent by the page-exit beacon; unsaved changes are written right away
// @Summary Save unsaved changes now
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 202 {object} FlushResponse
// @Failure 401 {object} ProblemDetails
// @Router /session/flush [post]
func (h *SessionHandler) Flush(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	saving := h.ledgerService.Flush(cred)
	if saving {
		log.Debug().Str("subject", cred.Subject).Msg("Exit flush started")
	}
	return c.JSON(http.StatusAccepted, FlushResponse{Saving: saving})
}

// Close handles DELETE /api/v1/session
// @Summary Flush and close the session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CloseResponse
// @Failure 401 {object} ProblemDetails
// @Router /session [delete]
func (h *SessionHandler) Close(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	return c.JSON(http.StatusOK, CloseResponse{Closed: h.ledgerService.CloseSession(cred)})
}
