package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NormalizeDashboard converts a loaded remote snapshot into a well-formed ledger.
// Malformed values are coerced rather than rejected: amounts default to zero, a non-list
// expenses value becomes an empty list, entries that are not objects are dropped and
// expenses without a usable id get a fresh one.
func NormalizeDashboard(doc *domain.DashboardDocument) *domain.Ledger {
	l := domain.NewLedger()
	if doc == nil {
		return l
	}

	l.TotalSalary = coerceJSONAmount(doc.TotalSalary)

	var tables map[string]json.RawMessage
	if err := json.Unmarshal(doc.BudgetTables, &tables); err != nil {
		return l
	}

	for name, raw := range tables {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var table map[string]json.RawMessage
		if !isJSONObject(raw) || json.Unmarshal(raw, &table) != nil {
			continue
		}

		cb := &domain.CategoryBudget{
			Budget:   coerceJSONAmount(table["budget"]),
			Expenses: normalizeExpenses(table["expenses"]),
		}
		// a catalogue category keeps its canonical name
		if c, ok := domain.LookupCategory(name); ok {
			name = c.Name
		}
		if existing, dup := l.Categories[name]; dup {
			existing.Expenses = append(existing.Expenses, cb.Expenses...)
			continue
		}
		l.Categories[name] = cb
	}

	return l
}

func normalizeExpenses(raw json.RawMessage) []domain.ExpenseEntry {
	expenses := []domain.ExpenseEntry{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return expenses
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if !isJSONObject(item) || json.Unmarshal(item, &fields) != nil {
			continue
		}

		id := coerceID(fields)
		if _, dup := seen[id]; dup || id == uuid.Nil {
			id = uuid.New()
		}
		seen[id] = struct{}{}

		expenses = append(expenses, domain.ExpenseEntry{
			ID:     id,
			Date:   coerceJSONString(fields["date"]),
			Note:   coerceJSONString(fields["note"]),
			Amount: coerceJSONAmount(fields["amount"]),
		})
	}
	return expenses
}

// NormalizeTransactions converts raw history items into records, dropping items that are not objects
func NormalizeTransactions(items []json.RawMessage) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if !isJSONObject(item) || json.Unmarshal(item, &fields) != nil {
			continue
		}

		id := coerceJSONString(fields["_id"])
		if id == "" {
			id = coerceJSONString(fields["id"])
		}
		records = append(records, domain.TransactionRecord{
			ID:       id,
			Date:     coerceJSONString(fields["date"]),
			Category: coerceJSONString(fields["category"]),
			Note:     coerceJSONString(fields["note"]),
			Amount:   coerceJSONAmount(fields["amount"]),
		})
	}
	return records
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func coerceID(fields map[string]json.RawMessage) uuid.UUID {
	for _, key := range []string{"id", "_id"} {
		if id, err := uuid.Parse(coerceJSONString(fields[key])); err == nil {
			return id
		}
	}
	return uuid.Nil
}

// coerceJSONAmount yields zero for anything that is not a storable non-negative number.
// Extra decimal places are rounded to cents.
func coerceJSONAmount(raw json.RawMessage) decimal.Decimal {
	d, err := domain.ParseStoredAmountJSON(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func coerceJSONString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
