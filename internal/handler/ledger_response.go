package handler

import (
	"encoding/json"
	"net/url"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/shopspring/decimal"
)

// AmountRequest carries an amount given as a JSON number or a numeric string
type AmountRequest struct {
	Amount json.RawMessage `json:"amount" swaggertype:"string" example:"2000.00"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Note   string `json:"note"`
	Amount string `json:"amount"`
}

// CategorySummaryResponse represents a budgeted category in API responses
type CategorySummaryResponse struct {
	Name         string            `json:"name"`
	Icon         string            `json:"icon"`
	Budget       string            `json:"budget"`
	Spent        string            `json:"spent"`
	Remaining    string            `json:"remaining"`
	OverBudget   bool              `json:"overBudget"`
	ExpenseCount int               `json:"expenseCount"`
	Expenses     []ExpenseResponse `json:"expenses,omitempty"`
}

// MonthPointResponse is one bucket of the monthly trend series
type MonthPointResponse struct {
	Month     string `json:"month"`
	Expenses  string `json:"expenses"`
	Remaining string `json:"remaining"`
}

// CategoryShareResponse is one slice of the spending breakdown
type CategoryShareResponse struct {
	Category string `json:"category"`
	Spent    string `json:"spent"`
	Percent  string `json:"percent"`
}

// SummaryResponse represents the derived dashboard totals
type SummaryResponse struct {
	TotalSalary      string                    `json:"totalSalary"`
	TotalBudgeted    string                    `json:"totalBudgeted"`
	TotalExpenses    string                    `json:"totalExpenses"`
	RemainingBalance string                    `json:"remainingBalance"`
	OverBudget       bool                      `json:"overBudget"`
	Categories       []CategorySummaryResponse `json:"categories"`
	Monthly          []MonthPointResponse      `json:"monthly"`
	Breakdown        []CategoryShareResponse   `json:"breakdown"`
}

// DashboardResponse represents the full dashboard
type DashboardResponse struct {
	Categories []CategorySummaryResponse `json:"categories"`
	Summary    SummaryResponse           `json:"summary"`
	Sync       service.SyncStatus        `json:"sync"`
}

// CategoryOptionResponse is a catalogue entry
type CategoryOptionResponse struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Icon     string `json:"icon"`
	Budgeted bool   `json:"budgeted"`
}

// TransactionResponse represents a history record
type TransactionResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Amount   string `json:"amount"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toExpenseResponse(e domain.ExpenseEntry) ExpenseResponse {
	return ExpenseResponse{
		ID:     e.ID.String(),
		Date:   e.Date,
		Note:   e.Note,
		Amount: money(e.Amount),
	}
}

func toCategorySummaryResponse(cs domain.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		Name:         cs.Name,
		Icon:         cs.Icon,
		Budget:       money(cs.Budget),
		Spent:        money(cs.Spent),
		Remaining:    money(cs.Remaining),
		OverBudget:   cs.OverBudget,
		ExpenseCount: cs.ExpenseCount,
	}
}

func toSummaryResponse(s *domain.DashboardSummary) SummaryResponse {
	resp := SummaryResponse{
		TotalSalary:      money(s.TotalSalary),
		TotalBudgeted:    money(s.TotalBudgeted),
		TotalExpenses:    money(s.TotalExpenses),
		RemainingBalance: money(s.RemainingBalance),
		OverBudget:       s.OverBudget,
		Categories:       make([]CategorySummaryResponse, len(s.Categories)),
		Monthly:          make([]MonthPointResponse, domain.MonthsPerYear),
		Breakdown:        make([]CategoryShareResponse, len(s.Breakdown)),
	}
	for i, cs := range s.Categories {
		resp.Categories[i] = toCategorySummaryResponse(cs)
	}
	for i := range domain.MonthsPerYear {
		resp.Monthly[i] = MonthPointResponse{
			Month:     domain.MonthLabels[i],
			Expenses:  money(s.MonthlyExpenses[i]),
			Remaining: money(s.RemainingByMonth[i]),
		}
	}
	for i, share := range s.Breakdown {
		resp.Breakdown[i] = CategoryShareResponse{
			Category: share.Category,
			Spent:    money(share.Spent),
			Percent:  share.Percent.StringFixed(2),
		}
	}
	return resp
}

func toDashboardResponse(v *service.DashboardView) DashboardResponse {
	resp := DashboardResponse{
		Categories: make([]CategorySummaryResponse, len(v.Categories)),
		Summary:    toSummaryResponse(v.Summary),
		Sync:       v.Sync,
	}
	for i, cd := range v.Categories {
		cr := toCategorySummaryResponse(cd.CategorySummary)
		cr.Expenses = make([]ExpenseResponse, len(cd.Expenses))
		for j, e := range cd.Expenses {
			cr.Expenses[j] = toExpenseResponse(e)
		}
		resp.Categories[i] = cr
	}
	return resp
}

// categoryParam returns the :category path value, which may be a slug or an escaped display name
func categoryParam(raw string) string {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}
