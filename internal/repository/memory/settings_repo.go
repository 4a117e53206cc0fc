// Package memory holds process-local repositories used when the remote store has no home for the data
package memory

import (
	"context"
	"sync"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
)

// SettingsRepository keeps settings in memory; they are lost on restart
type SettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]domain.Settings
}

var _ domain.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository creates an empty SettingsRepository
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{settings: make(map[string]domain.Settings)}
}

// Get retrieves settings by subject
func (r *SettingsRepository) Get(ctx context.Context, subject string) (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[subject]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// Upsert stores settings
func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	if settings == nil || settings.Subject == "" {
		return nil, domain.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[settings.Subject] = *settings
	out := *settings
	return &out, nil
}
