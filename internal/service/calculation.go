package service

import (
	"strings"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// expenseDateLayouts are tried in order when bucketing an expense by month
var expenseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseExpenseDate parses an expense date. The second result is false when the date is unparseable.
func ParseExpenseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range expenseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CategorySpent sums the expense amounts of one category
func CategorySpent(cb *domain.CategoryBudget) decimal.Decimal {
	total := decimal.Zero
	if cb == nil {
		return total
	}
	for _, e := range cb.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryRemaining returns budget minus spent; negative when the category is over budget
func CategoryRemaining(cb *domain.CategoryBudget) decimal.Decimal {
	if cb == nil {
		return decimal.Zero
	}
	return cb.Budget.Sub(CategorySpent(cb))
}

// TotalExpenses sums every expense across all categories
func TotalExpenses(l *domain.Ledger) decimal.Decimal {
	total := decimal.Zero
	if l == nil {
		return total
	}
	for _, cb := range l.Categories {
		total = total.Add(CategorySpent(cb))
	}
	return total
}

// TotalBudgeted sums the budgets of all categories
func TotalBudgeted(l *domain.Ledger) decimal.Decimal {
	total := decimal.Zero
	if l == nil {
		return total
	}
	for _, cb := range l.Categories {
		if cb != nil {
			total = total.Add(cb.Budget)
		}
	}
	return total
}

// RemainingBalance returns salary minus total expenses
func RemainingBalance(l *domain.Ledger) decimal.Decimal {
	if l == nil {
		return decimal.Zero
	}
	return l.TotalSalary.Sub(TotalExpenses(l))
}

// MonthlyExpenseSeries buckets expenses by calendar month of their date, ignoring the year.
// Expenses with unparseable dates are excluded.
func MonthlyExpenseSeries(l *domain.Ledger) [domain.MonthsPerYear]decimal.Decimal {
	var series [domain.MonthsPerYear]decimal.Decimal
	for i := range series {
		series[i] = decimal.Zero
	}
	if l == nil {
		return series
	}
	for _, cb := range l.Categories {
		if cb == nil {
			continue
		}
		for _, e := range cb.Expenses {
			t, ok := ParseExpenseDate(e.Date)
			if !ok {
				continue
			}
			m := int(t.Month()) - 1
			series[m] = series[m].Add(e.Amount)
		}
	}
	return series
}

// RemainingByMonth returns salary minus each monthly bucket
func RemainingByMonth(l *domain.Ledger) [domain.MonthsPerYear]decimal.Decimal {
	series := MonthlyExpenseSeries(l)
	salary := decimal.Zero
	if l != nil {
		salary = l.TotalSalary
	}
	var remaining [domain.MonthsPerYear]decimal.Decimal
	for i, spent := range series {
		remaining[i] = salary.Sub(spent)
	}
	return remaining
}

// CategoryBreakdown returns each category's share of total spending, in display order.
// Categories with nothing spent are left out, and the result is empty when nothing is spent at all.
func CategoryBreakdown(l *domain.Ledger) []domain.CategoryShare {
	shares := []domain.CategoryShare{}
	total := TotalExpenses(l)
	if !total.IsPositive() {
		return shares
	}
	for _, name := range l.CategoryNames() {
		spent := CategorySpent(l.Category(name))
		if spent.IsZero() {
			continue
		}
		shares = append(shares, domain.CategoryShare{
			Category: name,
			Spent:    spent,
			Percent:  spent.Div(total).Mul(hundred).Round(2),
		})
	}
	return shares
}

// BuildSummary computes every derived dashboard value from the ledger
func BuildSummary(l *domain.Ledger) *domain.DashboardSummary {
	if l == nil {
		l = domain.NewLedger()
	}

	categories := make([]domain.CategorySummary, 0, len(l.Categories))
	for _, name := range l.CategoryNames() {
		cb := l.Category(name)
		if cb == nil {
			continue
		}
		remaining := CategoryRemaining(cb)
		categories = append(categories, domain.CategorySummary{
			Name:         name,
			Icon:         domain.CategoryIcon(name),
			Budget:       cb.Budget,
			Spent:        CategorySpent(cb),
			Remaining:    remaining,
			OverBudget:   remaining.IsNegative(),
			ExpenseCount: len(cb.Expenses),
		})
	}

	remaining := RemainingBalance(l)
	return &domain.DashboardSummary{
		TotalSalary:      l.TotalSalary,
		TotalBudgeted:    TotalBudgeted(l),
		TotalExpenses:    TotalExpenses(l),
		RemainingBalance: remaining,
		OverBudget:       remaining.IsNegative(),
		Categories:       categories,
		MonthlyExpenses:  MonthlyExpenseSeries(l),
		RemainingByMonth: RemainingByMonth(l),
		Breakdown:        CategoryBreakdown(l),
	}
}
