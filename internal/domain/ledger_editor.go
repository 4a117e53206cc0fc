package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseField names an editable field of an expense entry
type ExpenseField string

const (
	ExpenseFieldDate   ExpenseField = "date"
	ExpenseFieldNote   ExpenseField = "note"
	ExpenseFieldAmount ExpenseField = "amount"
)

// ParseExpenseField validates a field name
func ParseExpenseField(s string) (ExpenseField, error) {
	switch f := ExpenseField(strings.ToLower(strings.TrimSpace(s))); f {
	case ExpenseFieldDate, ExpenseFieldNote, ExpenseFieldAmount:
		return f, nil
	default:
		return "", ErrInvalidField
	}
}

// resolveCategory maps a category key (existing ledger key, catalogue name or slug) to the ledger key.
// The second result is false when the key names no budgeted or catalogue category.
func (l *Ledger) resolveCategory(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if _, ok := l.Categories[key]; ok {
		return key, true
	}
	if c, ok := LookupCategory(key); ok {
		return c.Name, true
	}
	return key, false
}

// SetSalary sets the total monthly salary
func (l *Ledger) SetSalary(amount decimal.Decimal) error {
	if amount.IsNegative() || CheckAmount(amount) != nil {
		return ErrInvalidAmount
	}
	l.TotalSalary = amount
	return nil
}

// ClearSalary resets the salary to zero
func (l *Ledger) ClearSalary() {
	l.TotalSalary = decimal.Zero
}

// SetCategoryBudget creates the category entry or overwrites only its budget.
// Returns the canonical category name.
func (l *Ledger) SetCategoryBudget(category string, amount decimal.Decimal) (string, error) {
	if amount.IsNegative() || CheckAmount(amount) != nil {
		return "", ErrInvalidAmount
	}
	name, ok := l.resolveCategory(category)
	if !ok {
		return "", ErrUnknownCategory
	}
	if l.Categories == nil {
		l.Categories = make(map[string]*CategoryBudget)
	}
	if cb, exists := l.Categories[name]; exists {
		cb.Budget = amount
		return name, nil
	}
	l.Categories[name] = &CategoryBudget{
		Budget:   amount,
		Expenses: []ExpenseEntry{},
	}
	return name, nil
}

// DeleteCategoryBudget removes the category budget together with its expenses.
// Deleting an unbudgeted category is a no-op and reports false.
func (l *Ledger) DeleteCategoryBudget(category string) bool {
	name, _ := l.resolveCategory(category)
	if _, exists := l.Categories[name]; !exists {
		return false
	}
	delete(l.Categories, name)
	return true
}

// AddExpense appends an expense to a budgeted category. The budget itself is not changed,
// so a category may go over budget.
func (l *Ledger) AddExpense(category string, entry ExpenseEntry) (ExpenseEntry, error) {
	name, _ := l.resolveCategory(category)
	cb := l.Category(name)
	if cb == nil {
		return ExpenseEntry{}, ErrCategoryNotBudgeted
	}

	entry.Date = strings.TrimSpace(entry.Date)
	entry.Note = strings.TrimSpace(entry.Note)
	if entry.Date == "" {
		return ExpenseEntry{}, ErrDateRequired
	}
	if entry.Note == "" {
		return ExpenseEntry{}, ErrNoteRequired
	}
	if len(entry.Note) > MaxNoteLength {
		return ExpenseEntry{}, ErrInvalidInput
	}
	if !entry.Amount.IsPositive() || CheckAmount(entry.Amount) != nil {
		return ExpenseEntry{}, ErrInvalidAmount
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	cb.Expenses = append(cb.Expenses, entry)
	return entry, nil
}

// UpdateExpenseField replaces one field of an existing expense.
// Amount values are coerced, an unparseable amount becomes zero.
func (l *Ledger) UpdateExpenseField(category string, id uuid.UUID, field ExpenseField, value string) (ExpenseEntry, error) {
	name, _ := l.resolveCategory(category)
	cb := l.Category(name)
	idx := cb.FindExpense(id)
	if idx < 0 {
		return ExpenseEntry{}, ErrExpenseNotFound
	}

	entry := cb.Expenses[idx]
	switch field {
	case ExpenseFieldDate:
		entry.Date = strings.TrimSpace(value)
	case ExpenseFieldNote:
		note := strings.TrimSpace(value)
		if len(note) > MaxNoteLength {
			return ExpenseEntry{}, ErrInvalidInput
		}
		entry.Note = note
	case ExpenseFieldAmount:
		entry.Amount = CoerceAmount(value)
	default:
		return ExpenseEntry{}, ErrInvalidField
	}

	cb.Expenses[idx] = entry
	return entry, nil
}

// DeleteExpense removes an expense by id; later entries shift down by one.
// An unknown category or id is a no-op and reports false.
func (l *Ledger) DeleteExpense(category string, id uuid.UUID) bool {
	name, _ := l.resolveCategory(category)
	cb := l.Category(name)
	idx := cb.FindExpense(id)
	if idx < 0 {
		return false
	}
	cb.Expenses = append(cb.Expenses[:idx:idx], cb.Expenses[idx+1:]...)
	return true
}

// Budget returns the budget of a category addressed by ledger key, name or slug
func (l *Ledger) Budget(category string) (decimal.Decimal, bool) {
	name, _ := l.resolveCategory(category)
	cb := l.Category(name)
	if cb == nil {
		return decimal.Zero, false
	}
	return cb.Budget, true
}

// Expense returns an expense by category and id
func (l *Ledger) Expense(category string, id uuid.UUID) (ExpenseEntry, bool) {
	name, _ := l.resolveCategory(category)
	cb := l.Category(name)
	idx := cb.FindExpense(id)
	if idx < 0 {
		return ExpenseEntry{}, false
	}
	return cb.Expenses[idx], true
}
