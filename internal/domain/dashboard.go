package domain

import "github.com/shopspring/decimal"

// MonthsPerYear is the number of buckets in the monthly trend series
const MonthsPerYear = 12

// MonthLabels are the short labels of the monthly trend buckets (Jan = index 0)
var MonthLabels = [MonthsPerYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// CategorySummary contains the derived totals of one budgeted category
type CategorySummary struct {
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	Budget       decimal.Decimal `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	OverBudget   bool            `json:"overBudget"`
	ExpenseCount int             `json:"expenseCount"`
}

// CategoryShare is one slice of the spending breakdown chart.
// Percent is the share of total spending rounded to two places.
type CategoryShare struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Percent  decimal.Decimal `json:"percent"`
}

// DashboardSummary contains every derived value shown on the dashboard
type DashboardSummary struct {
	TotalSalary      decimal.Decimal                `json:"totalSalary"`
	TotalBudgeted    decimal.Decimal                `json:"totalBudgeted"`
	TotalExpenses    decimal.Decimal                `json:"totalExpenses"`
	RemainingBalance decimal.Decimal                `json:"remainingBalance"`
	OverBudget       bool                           `json:"overBudget"`
	Categories       []CategorySummary              `json:"categories"`
	MonthlyExpenses  [MonthsPerYear]decimal.Decimal `json:"monthlyExpenses"`
	RemainingByMonth [MonthsPerYear]decimal.Decimal `json:"remainingByMonth"`
	Breakdown        []CategoryShare                `json:"breakdown"`
}
