package domain

import (
	"encoding/json"
	"fmt"
)

type snapshotExpense struct {
	ID     string      `json:"id"`
	Date   string      `json:"date"`
	Note   string      `json:"note"`
	Amount json.Number `json:"amount"`
}

type snapshotCategory struct {
	Budget   json.Number       `json:"budget"`
	Expenses []snapshotExpense `json:"expenses"`
}

// NewDashboardDocument encodes a ledger snapshot in the remote store wire format.
// Amounts are written as JSON numbers.
func NewDashboardDocument(l *Ledger) (*DashboardDocument, error) {
	if l == nil {
		l = NewLedger()
	}

	tables := make(map[string]snapshotCategory, len(l.Categories))
	for name, cb := range l.Categories {
		if cb == nil {
			continue
		}
		expenses := make([]snapshotExpense, len(cb.Expenses))
		for i, e := range cb.Expenses {
			expenses[i] = snapshotExpense{
				ID:     e.ID.String(),
				Date:   e.Date,
				Note:   e.Note,
				Amount: json.Number(e.Amount.String()),
			}
		}
		tables[name] = snapshotCategory{
			Budget:   json.Number(cb.Budget.String()),
			Expenses: expenses,
		}
	}

	rawTables, err := json.Marshal(tables)
	if err != nil {
		return nil, fmt.Errorf("encode budget tables: %w", err)
	}

	return &DashboardDocument{
		TotalSalary:  json.RawMessage(l.TotalSalary.String()),
		BudgetTables: rawTables,
	}, nil
}
