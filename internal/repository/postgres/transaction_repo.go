package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionHistoryReader using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

var _ domain.TransactionHistoryReader = (*TransactionRepository)(nil)

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

type transactionRow struct {
	ID       string      `json:"_id"`
	Date     string      `json:"date"`
	Category string      `json:"category"`
	Note     string      `json:"note"`
	Amount   json.Number `json:"amount"`
}

// LoadTransactionHistory returns the user's transactions, newest first, in the remote wire shape
func (r *TransactionRepository) LoadTransactionHistory(ctx context.Context, cred domain.Credential) ([]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, date, category, note, amount::text
		 FROM transactions
		 WHERE user_subject = $1
		 ORDER BY date DESC, created_at DESC`,
		cred.Subject,
	)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var row transactionRow
		var amount string
		if err := rows.Scan(&row.ID, &row.Date, &row.Category, &row.Note, &amount); err != nil {
			return nil, err
		}
		row.Amount = json.Number(amount)
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}
