package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func budgetedLedger(t *testing.T, category string, budget string) *Ledger {
	t.Helper()
	l := NewLedger()
	_, err := l.SetCategoryBudget(category, amount(budget))
	require.NoError(t, err)
	return l
}

func TestSetCategoryBudget_CreatesEntryWithEmptyExpenses(t *testing.T) {
	l := NewLedger()

	name, err := l.SetCategoryBudget("groceries", amount("2000"))
	require.NoError(t, err)

	assert.Equal(t, "Groceries", name)
	cb := l.Category("Groceries")
	require.NotNil(t, cb)
	assert.True(t, cb.Budget.Equal(amount("2000")))
	assert.NotNil(t, cb.Expenses)
	assert.Empty(t, cb.Expenses)
}

func TestSetCategoryBudget_OverwritesBudgetKeepsExpenses(t *testing.T) {
	l := budgetedLedger(t, "Groceries", "2000")
	_, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: amount("40")})
	require.NoError(t, err)

	_, err = l.SetCategoryBudget("Groceries", amount("3000"))
	require.NoError(t, err)

	cb := l.Category("Groceries")
	assert.True(t, cb.Budget.Equal(amount("3000")))
	assert.Len(t, cb.Expenses, 1)
}

func TestSetCategoryBudget_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		category string
		amount   decimal.Decimal
		wantErr  error
	}{
		{"negative amount", "Groceries", amount("-1"), ErrInvalidAmount},
		{"beyond storable range", "Groceries", amount("1e13"), ErrInvalidAmount},
		{"huge exponent", "Groceries", amount("1e20000000"), ErrInvalidAmount},
		{"sub-cent precision", "Groceries", amount("10.001"), ErrInvalidAmount},
		{"unknown category", "Crypto", amount("100"), ErrUnknownCategory},
		{"empty category", "   ", amount("100"), ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			_, err := l.SetCategoryBudget(tt.category, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, l.Categories)
		})
	}
}

func TestSetCategoryBudget_ZeroIsAllowed(t *testing.T) {
	l := NewLedger()
	_, err := l.SetCategoryBudget("Savings", decimal.Zero)
	require.NoError(t, err)
	assert.True(t, l.IsBudgeted("Savings"))
}

func TestSetThenDeleteCategoryBudget_LeavesNoResidue(t *testing.T) {
	l := budgetedLedger(t, "Vacation", "5000")
	_, err := l.AddExpense("Vacation", ExpenseEntry{Date: "2024-05-01", Note: "flight", Amount: amount("3000")})
	require.NoError(t, err)

	assert.True(t, l.DeleteCategoryBudget("vacation"))

	_, exists := l.Categories["Vacation"]
	assert.False(t, exists)

	// budgeting again starts from an empty expense list
	_, err = l.SetCategoryBudget("Vacation", amount("100"))
	require.NoError(t, err)
	assert.Empty(t, l.Category("Vacation").Expenses)
}

func TestDeleteCategoryBudget_AbsentIsNoop(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.DeleteCategoryBudget("Groceries"))
	assert.Empty(t, l.Categories)
}

func TestDeleteCategoryBudget_UnknownKeyFromRemote(t *testing.T) {
	l := NewLedger()
	l.Categories["Legacy Bucket"] = &CategoryBudget{Budget: amount("10"), Expenses: []ExpenseEntry{}}

	assert.True(t, l.DeleteCategoryBudget("Legacy Bucket"))
	assert.Empty(t, l.Categories)
}

func TestAddExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entry   ExpenseEntry
		wantErr error
	}{
		{"zero amount", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: amount("-5")}, ErrInvalidAmount},
		{"missing date", ExpenseEntry{Date: " ", Note: "milk", Amount: amount("5")}, ErrDateRequired},
		{"missing note", ExpenseEntry{Date: "2024-03-01", Note: "", Amount: amount("5")}, ErrNoteRequired},
		{"amount too large", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: amount("1e12")}, ErrInvalidAmount},
		{"sub-cent amount", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: amount("0.005")}, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := budgetedLedger(t, "Groceries", "2000")
			_, err := l.AddExpense("Groceries", tt.entry)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, l.Category("Groceries").Expenses)
		})
	}
}

func TestAddExpense_RequiresBudget(t *testing.T) {
	l := NewLedger()
	_, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: "milk", Amount: amount("5")})
	assert.ErrorIs(t, err, ErrCategoryNotBudgeted)
	assert.Empty(t, l.Categories)
}

func TestAddExpense_AppendsAndAssignsID(t *testing.T) {
	l := budgetedLedger(t, "Groceries", "2000")

	entry, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: " milk ", Amount: amount("2500")})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "milk", entry.Note)
	cb := l.Category("Groceries")
	require.Len(t, cb.Expenses, 1)
	assert.Equal(t, entry, cb.Expenses[0])
	// overspending does not touch the budget
	assert.True(t, cb.Budget.Equal(amount("2000")))
}

func TestUpdateExpenseField(t *testing.T) {
	l := budgetedLedger(t, "Shopping", "1000")
	entry, err := l.AddExpense("Shopping", ExpenseEntry{Date: "2024-03-01", Note: "shoes", Amount: amount("300")})
	require.NoError(t, err)

	updated, err := l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldNote, "sneakers")
	require.NoError(t, err)
	assert.Equal(t, "sneakers", updated.Note)

	updated, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldAmount, "450.50")
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount("450.50")))

	updated, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldAmount, "12abc")
	require.NoError(t, err)
	assert.True(t, updated.Amount.IsZero(), "unparseable amount coerces to zero")

	updated, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldDate, "2024-04-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-02", updated.Date)

	assert.Equal(t, updated, l.Category("Shopping").Expenses[0])
}

func TestUpdateExpenseField_Limits(t *testing.T) {
	l := budgetedLedger(t, "Shopping", "1000")
	entry, err := l.AddExpense("Shopping", ExpenseEntry{Date: "2024-03-01", Note: "shoes", Amount: amount("300")})
	require.NoError(t, err)

	_, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldNote, strings.Repeat("n", MaxNoteLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "shoes", l.Category("Shopping").Expenses[0].Note)

	updated, err := l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldNote, strings.Repeat("n", MaxNoteLength))
	require.NoError(t, err)
	assert.Len(t, updated.Note, MaxNoteLength)

	updated, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseFieldAmount, "1e400")
	require.NoError(t, err)
	assert.True(t, updated.Amount.IsZero(), "out-of-range amount coerces to zero")
}

func TestUpdateExpenseField_NotFound(t *testing.T) {
	l := budgetedLedger(t, "Shopping", "1000")

	_, err := l.UpdateExpenseField("Shopping", uuid.New(), ExpenseFieldNote, "x")
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	_, err = l.UpdateExpenseField("Groceries", uuid.New(), ExpenseFieldNote, "x")
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestUpdateExpenseField_InvalidField(t *testing.T) {
	l := budgetedLedger(t, "Shopping", "1000")
	entry, err := l.AddExpense("Shopping", ExpenseEntry{Date: "2024-03-01", Note: "shoes", Amount: amount("300")})
	require.NoError(t, err)

	_, err = l.UpdateExpenseField("Shopping", entry.ID, ExpenseField("category"), "Groceries")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, entry, l.Category("Shopping").Expenses[0])
}

func TestDeleteExpense_ReindexesRemainingEntries(t *testing.T) {
	l := budgetedLedger(t, "Groceries", "2000")
	var ids []uuid.UUID
	for _, note := range []string{"A", "B", "C"} {
		e, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: note, Amount: amount("1")})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	assert.True(t, l.DeleteExpense("Groceries", ids[1]))
	cb := l.Category("Groceries")
	require.Len(t, cb.Expenses, 2)
	assert.Equal(t, "A", cb.Expenses[0].Note)
	assert.Equal(t, "C", cb.Expenses[1].Note)

	// the entry now at position 1 is C
	assert.True(t, l.DeleteExpense("Groceries", cb.Expenses[1].ID))
	cb = l.Category("Groceries")
	require.Len(t, cb.Expenses, 1)
	assert.Equal(t, "A", cb.Expenses[0].Note)
}

func TestDeleteExpense_UnknownIsNoop(t *testing.T) {
	l := budgetedLedger(t, "Groceries", "2000")
	_, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: "A", Amount: amount("1")})
	require.NoError(t, err)

	assert.False(t, l.DeleteExpense("Groceries", uuid.New()))
	assert.False(t, l.DeleteExpense("Transport Charges", uuid.New()))
	assert.Len(t, l.Category("Groceries").Expenses, 1)
}

func TestSetSalary(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.SetSalary(amount("50000")))
	assert.True(t, l.TotalSalary.Equal(amount("50000")))

	assert.ErrorIs(t, l.SetSalary(amount("-1")), ErrInvalidAmount)
	assert.ErrorIs(t, l.SetSalary(amount("1e13")), ErrInvalidAmount)
	assert.ErrorIs(t, l.SetSalary(amount("100.005")), ErrInvalidAmount)
	assert.True(t, l.TotalSalary.Equal(amount("50000")))

	require.NoError(t, l.SetSalary(amount("999999999999.99")))

	l.ClearSalary()
	assert.True(t, l.TotalSalary.IsZero())
}

func TestClone_IsIndependent(t *testing.T) {
	l := budgetedLedger(t, "Groceries", "2000")
	entry, err := l.AddExpense("Groceries", ExpenseEntry{Date: "2024-03-01", Note: "A", Amount: amount("1")})
	require.NoError(t, err)

	c := l.Clone()
	_, err = c.UpdateExpenseField("Groceries", entry.ID, ExpenseFieldNote, "changed")
	require.NoError(t, err)
	c.DeleteCategoryBudget("Groceries")

	assert.Equal(t, "A", l.Category("Groceries").Expenses[0].Note)
	assert.True(t, l.IsBudgeted("Groceries"))
}

func TestCategoryNames_DisplayOrder(t *testing.T) {
	l := NewLedger()
	for _, name := range []string{"Vacation", "Groceries", "Bills & Rechange"} {
		_, err := l.SetCategoryBudget(name, amount("1"))
		require.NoError(t, err)
	}
	l.Categories["Zeta"] = &CategoryBudget{Expenses: []ExpenseEntry{}}
	l.Categories["Alpha"] = &CategoryBudget{Expenses: []ExpenseEntry{}}

	assert.Equal(t, []string{"Bills & Rechange", "Groceries", "Vacation", "Alpha", "Zeta"}, l.CategoryNames())
}

func TestLookupCategory(t *testing.T) {
	c, ok := LookupCategory("health-insurance")
	assert.True(t, ok)
	assert.Equal(t, "Health Insurance", c.Name)

	c, ok = LookupCategory("bills & rechange")
	assert.True(t, ok)
	assert.Equal(t, "bills-rechange", c.Slug)

	_, ok = LookupCategory("")
	assert.False(t, ok)
}

func TestParseExpenseField(t *testing.T) {
	f, err := ParseExpenseField(" Amount ")
	require.NoError(t, err)
	assert.Equal(t, ExpenseFieldAmount, f)

	_, err = ParseExpenseField("id")
	assert.ErrorIs(t, err, ErrInvalidField)
}
