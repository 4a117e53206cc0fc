package service

import (
	"context"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService applies dashboard edits to the caller's session
type LedgerService struct {
	sessions *SessionManager
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(sessions *SessionManager) *LedgerService {
	return &LedgerService{sessions: sessions}
}

// CategoryDetail is one budgeted category with its expenses
type CategoryDetail struct {
	domain.CategorySummary
	Expenses []domain.ExpenseEntry `json:"expenses"`
}

// DashboardView is the full dashboard read model
type DashboardView struct {
	Categories []CategoryDetail         `json:"categories"`
	Summary    *domain.DashboardSummary `json:"summary"`
	Sync       SyncStatus               `json:"sync"`
}

// CategoryOption is a catalogue entry annotated with the caller's budget state
type CategoryOption struct {
	domain.Category
	Budgeted bool `json:"budgeted"`
}

// ExpenseInput holds the fields of a new expense
type ExpenseInput struct {
	Date   string
	Note   string
	Amount decimal.Decimal
}

// Dashboard returns the ledger with every derived value and the sync status
func (s *LedgerService) Dashboard(ctx context.Context, cred domain.Credential) (*DashboardView, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}

	view := &DashboardView{}
	session.Read(func(l *domain.Ledger) {
		view.Summary = BuildSummary(l)
		view.Categories = make([]CategoryDetail, 0, len(view.Summary.Categories))
		for _, cs := range view.Summary.Categories {
			cb := l.Category(cs.Name)
			expenses := make([]domain.ExpenseEntry, len(cb.Expenses))
			copy(expenses, cb.Expenses)
			view.Categories = append(view.Categories, CategoryDetail{CategorySummary: cs, Expenses: expenses})
		}
	})
	view.Sync = session.Status()
	return view, nil
}

// Summary returns the derived totals only
func (s *LedgerService) Summary(ctx context.Context, cred domain.Credential) (*domain.DashboardSummary, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	var summary *domain.DashboardSummary
	session.Read(func(l *domain.Ledger) {
		summary = BuildSummary(l)
	})
	return summary, nil
}

// Categories returns the fixed catalogue with the caller's budgeted flags
func (s *LedgerService) Categories(ctx context.Context, cred domain.Credential) ([]CategoryOption, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	options := make([]CategoryOption, len(domain.Categories))
	session.Read(func(l *domain.Ledger) {
		for i, c := range domain.Categories {
			options[i] = CategoryOption{Category: c, Budgeted: l.IsBudgeted(c.Name)}
		}
	})
	return options, nil
}

// SetSalary sets the total salary
func (s *LedgerService) SetSalary(ctx context.Context, cred domain.Credential, amount decimal.Decimal) (*domain.DashboardSummary, error) {
	return s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		changed := !l.TotalSalary.Equal(amount)
		if err := l.SetSalary(amount); err != nil {
			return false, err
		}
		return changed, nil
	})
}

// ClearSalary resets the salary to zero
func (s *LedgerService) ClearSalary(ctx context.Context, cred domain.Credential) (*domain.DashboardSummary, error) {
	return s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		changed := !l.TotalSalary.IsZero()
		l.ClearSalary()
		return changed, nil
	})
}

// SetCategoryBudget creates or overwrites a category budget and returns the category totals
func (s *LedgerService) SetCategoryBudget(ctx context.Context, cred domain.Credential, category string, amount decimal.Decimal) (*domain.CategorySummary, error) {
	var name string
	summary, err := s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		before, existed := l.Budget(category)
		var err error
		name, err = l.SetCategoryBudget(category, amount)
		if err != nil {
			return false, err
		}
		return !existed || !before.Equal(amount), nil
	})
	if err != nil {
		return nil, err
	}
	for i := range summary.Categories {
		if summary.Categories[i].Name == name {
			return &summary.Categories[i], nil
		}
	}
	return nil, domain.ErrInternalError
}

// DeleteCategoryBudget removes a category budget with its expenses. Deleting an unbudgeted category is a no-op.
func (s *LedgerService) DeleteCategoryBudget(ctx context.Context, cred domain.Credential, category string) (*domain.DashboardSummary, error) {
	return s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		return l.DeleteCategoryBudget(category), nil
	})
}

// AddExpense appends an expense to a budgeted category
func (s *LedgerService) AddExpense(ctx context.Context, cred domain.Credential, category string, input ExpenseInput) (*domain.ExpenseEntry, error) {
	var added domain.ExpenseEntry
	_, err := s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		var err error
		added, err = l.AddExpense(category, domain.ExpenseEntry{
			Date:   input.Date,
			Note:   input.Note,
			Amount: input.Amount,
		})
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateExpenseField replaces one field of an expense
func (s *LedgerService) UpdateExpenseField(ctx context.Context, cred domain.Credential, category string, id uuid.UUID, field domain.ExpenseField, value string) (*domain.ExpenseEntry, error) {
	var updated domain.ExpenseEntry
	_, err := s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		before, _ := l.Expense(category, id)
		var err error
		updated, err = l.UpdateExpenseField(category, id, field, value)
		if err != nil {
			return false, err
		}
		return !sameExpense(before, updated), nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteExpense removes an expense. Reports whether it existed.
func (s *LedgerService) DeleteExpense(ctx context.Context, cred domain.Credential, category string, id uuid.UUID) (bool, error) {
	var deleted bool
	_, err := s.apply(ctx, cred, func(l *domain.Ledger) (bool, error) {
		deleted = l.DeleteExpense(category, id)
		return deleted, nil
	})
	return deleted, err
}

// Transactions returns the read-only transaction history
func (s *LedgerService) Transactions(ctx context.Context, cred domain.Credential) ([]domain.TransactionRecord, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	return session.Transactions()
}

// SyncStatus returns the caller's sync status
func (s *LedgerService) SyncStatus(ctx context.Context, cred domain.Credential) (*SyncStatus, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	st := session.Status()
	return &st, nil
}

// OpenStatus returns the sync status of an already open session without opening one
func (s *LedgerService) OpenStatus(subject string) (*SyncStatus, bool) {
	session, ok := s.sessions.Lookup(subject)
	if !ok {
		return nil, false
	}
	st := session.Status()
	return &st, true
}

// Flush saves the caller's unsaved changes right away. Reports whether a save was started.
func (s *LedgerService) Flush(cred domain.Credential) bool {
	session, ok := s.sessions.Lookup(cred.Subject)
	if !ok {
		return false
	}
	return session.Flush()
}

// CloseSession flushes and drops the caller's session. Reports whether one was open.
func (s *LedgerService) CloseSession(cred domain.Credential) bool {
	return s.sessions.Close(cred.Subject)
}

// Snapshot returns a copy of the caller's ledger
func (s *LedgerService) Snapshot(ctx context.Context, cred domain.Credential) (*domain.Ledger, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	l, _ := session.Snapshot()
	return l, nil
}

func (s *LedgerService) apply(ctx context.Context, cred domain.Credential, fn func(*domain.Ledger) (bool, error)) (*domain.DashboardSummary, error) {
	session, err := s.sessions.Open(ctx, cred)
	if err != nil {
		return nil, err
	}
	return session.Apply(fn)
}

func sameExpense(a, b domain.ExpenseEntry) bool {
	return a.ID == b.ID && a.Date == b.Date && a.Note == b.Note && a.Amount.Equal(b.Amount)
}
