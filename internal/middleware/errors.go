package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const errorTypeBase = "https://ledger.fortuna.app/errors/"

const (
	errorTypeUnauthorized = errorTypeBase + "unauthorized"
	errorTypeRateLimit    = errorTypeBase + "rate-limit"
)

// problemDetails mirrors handler.ProblemDetails. The handler package imports
// middleware, so the shape is repeated here rather than shared.
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeProblem(c echo.Context, status int, errorType, title, detail string) error {
	return c.JSON(status, problemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="ledger"`)
	return writeProblem(c, http.StatusUnauthorized, errorTypeUnauthorized, "Unauthorized", detail)
}

// rateLimitedError also sets Retry-After, in whole seconds
func rateLimitedError(c echo.Context, retryAfter int) error {
	c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	return writeProblem(c, http.StatusTooManyRequests, errorTypeRateLimit, "Rate Limit Exceeded",
		fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
}
