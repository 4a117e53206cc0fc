package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseEntry is a single dated expense logged against a category budget
type ExpenseEntry struct {
	ID     uuid.UUID       `json:"id"`
	Date   string          `json:"date"`
	Note   string          `json:"note"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryBudget holds the budget of one category and its expenses in insertion order
type CategoryBudget struct {
	Budget   decimal.Decimal `json:"budget"`
	Expenses []ExpenseEntry  `json:"expenses"`
}

// Ledger is the salary and per-category budget state of one dashboard session
type Ledger struct {
	TotalSalary decimal.Decimal            `json:"totalSalary"`
	Categories  map[string]*CategoryBudget `json:"categories"`
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		TotalSalary: decimal.Zero,
		Categories:  make(map[string]*CategoryBudget),
	}
}

// Category returns the budget entry for a category, or nil when unbudgeted
func (l *Ledger) Category(name string) *CategoryBudget {
	if l == nil || l.Categories == nil {
		return nil
	}
	return l.Categories[name]
}

// IsBudgeted reports whether the category has a budget entry
func (l *Ledger) IsBudgeted(name string) bool {
	return l.Category(name) != nil
}

// CategoryNames returns budgeted category names in display order.
// Known categories come first in catalogue order, unknown names follow alphabetically.
func (l *Ledger) CategoryNames() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Categories))
	for name := range l.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := CategoryOrder(names[i]), CategoryOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

// Clone returns a deep copy that shares no mutable state with the receiver
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return NewLedger()
	}
	out := &Ledger{
		TotalSalary: l.TotalSalary,
		Categories:  make(map[string]*CategoryBudget, len(l.Categories)),
	}
	for name, cb := range l.Categories {
		if cb == nil {
			continue
		}
		expenses := make([]ExpenseEntry, len(cb.Expenses))
		copy(expenses, cb.Expenses)
		out.Categories[name] = &CategoryBudget{
			Budget:   cb.Budget,
			Expenses: expenses,
		}
	}
	return out
}

// FindExpense returns the position of an expense by id, or -1
func (cb *CategoryBudget) FindExpense(id uuid.UUID) int {
	if cb == nil {
		return -1
	}
	for i, e := range cb.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
