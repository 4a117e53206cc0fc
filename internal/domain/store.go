package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Credential identifies the signed-in user and carries the bearer token obtained at sign-in
type Credential struct {
	Subject string
	Token   string
}

// DashboardDocument is the persisted snapshot as exchanged with the remote store.
// Fields stay raw so that malformed data can be normalized in one place after loading.
type DashboardDocument struct {
	TotalSalary  json.RawMessage `json:"totalSalary,omitempty"`
	BudgetTables json.RawMessage `json:"budgetTables,omitempty"`
}

// TransactionRecord is one entry of the read-only transaction history
type TransactionRecord struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Amount   decimal.Decimal `json:"amount"`
}

// DashboardStore loads and saves full ledger snapshots
type DashboardStore interface {
	LoadDashboard(ctx context.Context, cred Credential) (*DashboardDocument, error)
	SaveDashboard(ctx context.Context, cred Credential, doc *DashboardDocument) error
}

// TransactionHistoryReader loads the separately sourced transaction history.
// Items are returned raw and normalized by the caller.
type TransactionHistoryReader interface {
	LoadTransactionHistory(ctx context.Context, cred Credential) ([]json.RawMessage, error)
}

// Theme is the UI color theme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Settings holds per-user presentation settings
type Settings struct {
	Subject   string    `json:"-"`
	Theme     Theme     `json:"theme"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings used before the user toggles anything
func DefaultSettings(subject string) *Settings {
	return &Settings{Subject: subject, Theme: ThemeLight}
}

// SettingsRepository persists per-user settings
type SettingsRepository interface {
	Get(ctx context.Context, subject string) (*Settings, error)
	Upsert(ctx context.Context, settings *Settings) (*Settings, error)
}
