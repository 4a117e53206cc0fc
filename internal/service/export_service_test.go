package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_Disabled(t *testing.T) {
	svc, _ := newLedgerFixture(t)
	export := NewExportService(svc, nil, 0)

	assert.False(t, export.IsEnabled())
	_, err := export.Export(ctx, credFor("u-1"))
	assert.ErrorIs(t, err, ErrExportNotConfigured)
}

func TestExportService_UploadsSnapshot(t *testing.T) {
	svc, f := newLedgerFixture(t)
	store := testutil.NewMockObjectStore()
	export := NewExportService(svc, store, 10*time.Minute)
	export.now = f.scheduler.Now
	cred := credFor("auth0|u-1")

	_, err := svc.SetSalary(ctx, cred, dec("50000"))
	require.NoError(t, err)
	_, err = svc.SetCategoryBudget(ctx, cred, "Groceries", dec("2000"))
	require.NoError(t, err)

	result, err := export.Export(ctx, cred)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "exports/auth0_u-1/20240301T090000Z-"), result.Key)
	assert.Contains(t, result.URL, result.Key)
	assert.Contains(t, result.URL, "expires=600")
	assert.Equal(t, testStart.Add(10*time.Minute), result.ExpiresAt)

	body, ok := store.Object(result.Key)
	require.True(t, ok)
	var file struct {
		Dashboard struct {
			TotalSalary  json.RawMessage `json:"totalSalary"`
			BudgetTables json.RawMessage `json:"budgetTables"`
		} `json:"dashboard"`
		Summary struct {
			TotalBudgeted string `json:"totalBudgeted"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(body, &file))
	assert.JSONEq(t, `50000`, string(file.Dashboard.TotalSalary))
	assert.JSONEq(t, `{"Groceries": {"budget": 2000, "expenses": []}}`, string(file.Dashboard.BudgetTables))
	assert.Equal(t, "2000", file.Summary.TotalBudgeted)
}
