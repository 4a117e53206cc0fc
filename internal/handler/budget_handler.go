package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// BudgetHandler handles category budget HTTP requests
type BudgetHandler struct {
	ledgerService *service.LedgerService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(ledgerService *service.LedgerService) *BudgetHandler {
	return &BudgetHandler{ledgerService: ledgerService}
}

// GetCategories handles GET /api/v1/categories
// @Summary List the category catalogue
// @Description Fixed category list with icons and which ones the caller has budgeted
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CategoryOptionResponse
// @Failure 401 {object} ProblemDetails
// @Router /categories [get]
func (h *BudgetHandler) GetCategories(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	options, err := h.ledgerService.Categories(c.Request().Context(), cred)
	if err != nil {
		return handleServiceError(c, err, "Failed to get categories")
	}

	resp := make([]CategoryOptionResponse, len(options))
	for i, o := range options {
		resp[i] = CategoryOptionResponse{Name: o.Name, Slug: o.Slug, Icon: o.Icon, Budgeted: o.Budgeted}
	}
	return c.JSON(http.StatusOK, resp)
}

// SetBudget handles PUT /api/v1/budgets/:category
// @Summary Set a category budget
// @Description Creates the budget or overwrites its amount, keeping existing expenses
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category slug or name"
// @Param request body AmountRequest true "Budget amount"
// @Success 200 {object} CategorySummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budgets/{category} [put]
func (h *BudgetHandler) SetBudget(c echo.Context) error {
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
		return handleServiceError(c, err, "Failed to set budget")
	}

	cs, err := h.ledgerService.SetCategoryBudget(c.Request().Context(), cred, categoryParam(c.Param("category")), amount)
	if err != nil {
		return handleServiceError(c, err, "Failed to set budget")
	}
	return c.JSON(http.StatusOK, toCategorySummaryResponse(*cs))
}

// DeleteBudget handles DELETE /api/v1/budgets/:category
// The category's expenses go with it.
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.ledgerService.DeleteCategoryBudget(c.Request().Context(), cred, categoryParam(c.Param("category")))
	if err != nil {
		return handleServiceError(c, err, "Failed to delete budget")
	}
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}
