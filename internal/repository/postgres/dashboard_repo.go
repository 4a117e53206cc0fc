package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardRepository implements domain.DashboardStore using PostgreSQL
type DashboardRepository struct {
	pool *pgxpool.Pool
}

var _ domain.DashboardStore = (*DashboardRepository)(nil)

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// LoadDashboard returns the stored snapshot, or an empty document for a new user
func (r *DashboardRepository) LoadDashboard(ctx context.Context, cred domain.Credential) (*domain.DashboardDocument, error) {
	var salary string
	var tables []byte
	err := r.pool.QueryRow(ctx,
		`SELECT total_salary::text, budget_tables
		 FROM dashboards
		 WHERE user_subject = $1`,
		cred.Subject,
	).Scan(&salary, &tables)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.DashboardDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return documentFromRow(salary, tables), nil
}

// SaveDashboard upserts the full snapshot
func (r *DashboardRepository) SaveDashboard(ctx context.Context, cred domain.Credential, doc *domain.DashboardDocument) error {
	salary, tables, err := rowFromDocument(doc)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO dashboards (user_subject, total_salary, budget_tables, updated_at)
		 VALUES ($1, $2::numeric, $3::jsonb, NOW())
		 ON CONFLICT (user_subject) DO UPDATE
		 SET total_salary = EXCLUDED.total_salary,
		     budget_tables = EXCLUDED.budget_tables,
		     updated_at = NOW()`,
		cred.Subject, salary, tables,
	)
	if err != nil {
		return fmt.Errorf("save dashboard: %w", err)
	}
	return nil
}

func documentFromRow(salary string, tables []byte) *domain.DashboardDocument {
	doc := &domain.DashboardDocument{TotalSalary: json.RawMessage(salary)}
	if len(tables) > 0 {
		doc.BudgetTables = json.RawMessage(tables)
	}
	return doc
}

// rowFromDocument validates the document before it reaches the database
func rowFromDocument(doc *domain.DashboardDocument) (string, string, error) {
	if doc == nil {
		return "", "", domain.ErrInvalidInput
	}
	salary := decimal.Zero
	if len(doc.TotalSalary) > 0 {
		var err error
		salary, err = domain.ParseAmountJSON(doc.TotalSalary)
		if err != nil {
			return "", "", fmt.Errorf("total salary: %w", err)
		}
		if salary.IsNegative() {
			return "", "", fmt.Errorf("total salary: %w", domain.ErrInvalidAmount)
		}
	}
	tables := "{}"
	if len(doc.BudgetTables) > 0 {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(doc.BudgetTables, &probe); err != nil {
			return "", "", fmt.Errorf("budget tables: %w", domain.ErrInvalidInput)
		}
		if probe != nil {
			tables = string(doc.BudgetTables)
		}
	}
	return salary.String(), tables, nil
}
