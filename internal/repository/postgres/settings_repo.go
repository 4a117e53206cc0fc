package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository implements domain.SettingsRepository using PostgreSQL
type SettingsRepository struct {
	pool *pgxpool.Pool
}

var _ domain.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get retrieves settings by subject
func (r *SettingsRepository) Get(ctx context.Context, subject string) (*domain.Settings, error) {
	s := &domain.Settings{Subject: subject}
	var theme string
	err := r.pool.QueryRow(ctx,
		`SELECT theme, updated_at FROM user_settings WHERE user_subject = $1`,
		subject,
	).Scan(&theme, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Theme = domain.Theme(theme)
	return s, nil
}

// Upsert stores settings
func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	out := &domain.Settings{Subject: settings.Subject}
	var theme string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_subject, theme, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_subject) DO UPDATE
		 SET theme = EXCLUDED.theme, updated_at = EXCLUDED.updated_at
		 RETURNING theme, updated_at`,
		settings.Subject, string(settings.Theme), settings.UpdatedAt,
	).Scan(&theme, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	out.Theme = domain.Theme(theme)
	return out, nil
}
