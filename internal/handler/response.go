package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://ledger.fortuna.app/errors/validation"
	ErrorTypeNotFound     = "https://ledger.fortuna.app/errors/not-found"
	ErrorTypeUnauthorized = "https://ledger.fortuna.app/errors/unauthorized"
	ErrorTypeConflict     = "https://ledger.fortuna.app/errors/conflict"
	ErrorTypeUnavailable  = "https://ledger.fortuna.app/errors/unavailable"
	ErrorTypeInternal     = "https://ledger.fortuna.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnavailableError creates a service unavailable error response
func NewUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation sentinels to the request field they concern
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrUnknownCategory, "category"},
	{domain.ErrCategoryNotBudgeted, "category"},
	{domain.ErrDateRequired, "date"},
	{domain.ErrNoteRequired, "note"},
	{domain.ErrInvalidField, "field"},
	{domain.ErrInvalidTheme, "theme"},
}

// handleServiceError writes the problem details response for an error returned by a service.
// failure is the detail used when the error is unexpected.
func handleServiceError(c echo.Context, err error, failure string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: fe.field, Message: fe.err.Error()}})
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Authentication required")
	case errors.Is(err, domain.ErrSessionClosed):
		return NewConflictError(c, "Session was closed, retry the request")
	case errors.Is(err, service.ErrExportNotConfigured):
		return NewUnavailableError(c, "Export storage is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		return NewUnavailableError(c, "Remote store did not respond in time")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(failure)
	return NewInternalError(c, failure)
}
