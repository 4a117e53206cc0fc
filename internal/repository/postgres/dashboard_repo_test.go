package postgres

import (
	"encoding/json"
	"testing"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFromDocument(t *testing.T) {
	tests := []struct {
		name       string
		doc        *domain.DashboardDocument
		wantSalary string
		wantTables string
		wantErr    bool
	}{
		{
			name:       "well formed",
			doc:        &domain.DashboardDocument{TotalSalary: json.RawMessage(`50000`), BudgetTables: json.RawMessage(`{"Groceries": {"budget": 2000, "expenses": []}}`)},
			wantSalary: "50000",
			wantTables: `{"Groceries": {"budget": 2000, "expenses": []}}`,
		},
		{
			name:       "missing tables",
			doc:        &domain.DashboardDocument{TotalSalary: json.RawMessage(`"12.5"`)},
			wantSalary: "12.5",
			wantTables: `{}`,
		},
		{name: "nil", doc: nil, wantErr: true},
		{name: "negative salary", doc: &domain.DashboardDocument{TotalSalary: json.RawMessage(`-1`)}, wantErr: true},
		{name: "tables not an object", doc: &domain.DashboardDocument{TotalSalary: json.RawMessage(`1`), BudgetTables: json.RawMessage(`[]`)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salary, tables, err := rowFromDocument(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSalary, salary)
			assert.JSONEq(t, tt.wantTables, tables)
		})
	}
}

func TestDocumentFromRow(t *testing.T) {
	doc := documentFromRow("50000.00", []byte(`{"Savings": {"budget": 5000, "expenses": []}}`))
	assert.JSONEq(t, `50000.00`, string(doc.TotalSalary))
	assert.JSONEq(t, `{"Savings": {"budget": 5000, "expenses": []}}`, string(doc.BudgetTables))

	empty := documentFromRow("0", nil)
	assert.Nil(t, empty.BudgetTables)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
