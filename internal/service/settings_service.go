package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
)

// SettingsService handles per-user presentation settings. Settings are read from the
// repository once per user and kept in memory; every toggle is written through.
type SettingsService struct {
	repo      domain.SettingsRepository
	publisher websocket.EventPublisher
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]domain.Settings
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{
		repo:      repo,
		publisher: websocket.NoOpPublisher{},
		now:       time.Now,
		cache:     make(map[string]domain.Settings),
	}
}

// SetEventPublisher sets the event publisher for settings changes
func (s *SettingsService) SetEventPublisher(publisher websocket.EventPublisher) {
	if publisher == nil {
		publisher = websocket.NoOpPublisher{}
	}
	s.publisher = publisher
}

// Get returns the user's settings, falling back to defaults when none were saved
func (s *SettingsService) Get(ctx context.Context, subject string) (*domain.Settings, error) {
	s.mu.Lock()
	cached, ok := s.cache[subject]
	s.mu.Unlock()
	if ok {
		return &cached, nil
	}

	settings, err := s.repo.Get(ctx, subject)
	if errors.Is(err, domain.ErrNotFound) {
		settings = domain.DefaultSettings(subject)
	} else if err != nil {
		return nil, err
	}

	s.remember(settings)
	out := *settings
	return &out, nil
}

// SetTheme validates and stores the theme
func (s *SettingsService) SetTheme(ctx context.Context, subject, theme string) (*domain.Settings, error) {
	parsed, err := domain.ParseTheme(theme)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, &domain.Settings{
		Subject:   subject,
		Theme:     parsed,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.remember(saved)
	s.publisher.Publish(subject, websocket.SettingsUpdated(saved))
	out := *saved
	return &out, nil
}

func (s *SettingsService) remember(settings *domain.Settings) {
	s.mu.Lock()
	s.cache[settings.Subject] = *settings
	s.mu.Unlock()
}
