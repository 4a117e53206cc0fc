package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	ledgerService *service.LedgerService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(ledgerService *service.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{ledgerService: ledgerService}
}

// CreateExpenseRequest represents the request body for adding an expense
type CreateExpenseRequest struct {
	Date   string          `json:"date" example:"2024-03-02"`
	Note   string          `json:"note" example:"Weekly groceries"`
	Amount json.RawMessage `json:"amount" swaggertype:"string" example:"125.50"`
}

// UpdateExpenseRequest represents the request body for editing one expense field
type UpdateExpenseRequest struct {
	Field string          `json:"field" enums:"date,note,amount"`
	Value json.RawMessage `json:"value" swaggertype:"string"`
}

// CreateExpense handles POST /api/v1/budgets/:category/expenses
// @Summary Add an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category slug or name"
// @Param request body CreateExpenseRequest true "Expense"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budgets/{category}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var errs []ValidationError
	if strings.TrimSpace(req.Date) == "" {
		errs = append(errs, ValidationError{Field: "date", Message: domain.ErrDateRequired.Error()})
	}
	if strings.TrimSpace(req.Note) == "" {
		errs = append(errs, ValidationError{Field: "note", Message: domain.ErrNoteRequired.Error()})
	}
	amount, err := domain.ParseAmountJSON(req.Amount)
	if err != nil || !amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Message: "Amount must be greater than zero"})
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	entry, err := h.ledgerService.AddExpense(c.Request().Context(), cred, categoryParam(c.Param("category")), service.ExpenseInput{
		Date:   req.Date,
		Note:   req.Note,
		Amount: amount,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to add expense")
	}

	log.Debug().Str("subject", cred.Subject).Str("expense_id", entry.ID.String()).Msg("Expense added")
	return c.JSON(http.StatusCreated, toExpenseResponse(*entry))
}

// UpdateExpense handles PATCH /api/v1/budgets/:category/expenses/:id
// @Summary Edit one field of an expense
// @Description An amount that is not a valid non-negative number is stored as zero
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category slug or name"
// @Param id path string true "Expense ID"
// @Param request body UpdateExpenseRequest true "Field and value"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{category}/expenses/{id} [patch]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", []ValidationError{{Field: "id", Message: "Must be a valid UUID"}})
	}

	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	field, err := domain.ParseExpenseField(req.Field)
	if err != nil {
		return handleServiceError(c, err, "Failed to update expense")
	}

	entry, err := h.ledgerService.UpdateExpenseField(c.Request().Context(), cred, categoryParam(c.Param("category")), id, field, rawValue(req.Value))
	if err != nil {
		return handleServiceError(c, err, "Failed to update expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(*entry))
}

// DeleteExpense handles DELETE /api/v1/budgets/:category/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	cred := middleware.GetCredential(c)
	if cred.Subject == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", []ValidationError{{Field: "id", Message: "Must be a valid UUID"}})
	}

	deleted, err := h.ledgerService.DeleteExpense(c.Request().Context(), cred, categoryParam(c.Param("category")), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to delete expense")
	}
	if !deleted {
		return NewNotFoundError(c, "Expense not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// rawValue turns a JSON string or number into its text form
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
