package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategories(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/v1/budgets/savings", `{"amount": 5000}`, "u-1").Code)

	rec := env.do(http.MethodGet, "/api/v1/categories", "", "u-1")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[[]CategoryOptionResponse](t, rec)
	require.Len(t, resp, len(domain.Categories))
	for _, o := range resp {
		assert.Equal(t, o.Name == "Savings", o.Budgeted, o.Name)
		assert.NotEmpty(t, o.Icon)
	}
}

func TestSetBudget_BySlugOrName(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"slug", "/api/v1/budgets/bills-rechange"},
		{"escaped name", "/api/v1/budgets/Bills%20%26%20Rechange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(http.MethodPut, tt.path, `{"amount": "1500.25"}`, "u-1")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decodeJSON[CategorySummaryResponse](t, rec)
			assert.Equal(t, "Bills & Rechange", resp.Name)
			assert.Equal(t, "1500.25", resp.Budget)
			assert.Equal(t, "1500.25", resp.Remaining)
			assert.Equal(t, "💡", resp.Icon)
		})
	}
}

func TestSetBudget_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		body  string
		field string
	}{
		{"unknown category", "/api/v1/budgets/rent", `{"amount": 100}`, "category"},
		{"negative amount", "/api/v1/budgets/groceries", `{"amount": -5}`, "amount"},
		{"non-numeric amount", "/api/v1/budgets/groceries", `{"amount": "lots"}`, "amount"},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPut, tt.path, tt.body, "u-1")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, []string{tt.field}, problemFields(decodeJSON[ProblemDetails](t, rec)))
		})
	}
}

func TestDeleteBudget_RemovesExpenses(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/v1/budgets/vacation", `{"amount": 3000}`, "u-1").Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/v1/budgets/vacation/expenses", `{"date": "2024-05-01", "note": "Flights", "amount": 800}`, "u-1").Code)

	rec := env.do(http.MethodDelete, "/api/v1/budgets/vacation", "", "u-1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[SummaryResponse](t, rec)
	assert.Empty(t, resp.Categories)
	assert.Equal(t, "0.00", resp.TotalExpenses)

	// budgeting it again starts with no expenses
	rec = env.do(http.MethodPut, "/api/v1/budgets/vacation", `{"amount": 10}`, "u-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeJSON[CategorySummaryResponse](t, rec).ExpenseCount)
}
