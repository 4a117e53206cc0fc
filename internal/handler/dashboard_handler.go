package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	ledgerService *service.LedgerService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(ledgerService *service.LedgerService) *DashboardHandler {
	return &DashboardHandler{
		ledgerService: ledgerService,
	}
}

// GetDashboard handles GET /api/v1/dashboard
// @Summary Get the dashboard
// @Description Budgeted categories with their expenses, the derived totals and the save status
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ProblemDetails
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	view, err := h.ledgerService.Dashboard(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to get dashboard")
	}
	return c.JSON(http.StatusOK, toDashboardResponse(view))
}

// GetSummary handles GET /api/v1/dashboard/summary
// @Summary Get the dashboard summary
// @Description Derived totals, monthly trend and spending breakdown
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} ProblemDetails
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.ledgerService.Summary(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to get dashboard summary")
	}
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// SetSalary handles PUT /api/v1/dashboard/salary
// @Summary Set the total salary
// @Tags dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AmountRequest true "Salary"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /dashboard/salary [put]
func (h *DashboardHandler) SetSalary(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req AmountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := domain.ParseAmountJSON(req.Amount)
	if err != nil {
		return handleServiceError(c, err, "Failed to set salary")
	}

	summary, err := h.ledgerService.SetSalary(c.Request().Context(), cred, amount)
	if err != nil {
		return handleServiceError(c, err, "Failed to set salary")
	}

	log.Debug().Str("subject", cred.Subject).Str("salary", amount.String()).Msg("Salary updated")
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// ClearSalary handles DELETE /api/v1/dashboard/salary
func (h *DashboardHandler) ClearSalary(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.ledgerService.ClearSalary(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to clear salary")
	}
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetTransactions handles GET /api/v1/transactions
// @Summary List the transaction history
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TransactionResponse
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /transactions [get]
func (h *DashboardHandler) GetTransactions(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	records, err := h.ledgerService.Transactions(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to load transactions")
	}

	resp := make([]TransactionResponse, len(records))
	for i, r := range records {
		resp[i] = TransactionResponse{
			ID:       r.ID,
			Date:     r.Date,
			Category: r.Category,
			Note:     r.Note,
			Amount:   money(r.Amount),
		}
	}
	return c.JSON(http.StatusOK, resp)
}
