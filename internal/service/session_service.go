package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/autosave"
	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// SessionConfig holds session settings
type SessionConfig struct {
	SaveDelay   time.Duration      // Quiet period before an automatic save
	SaveTimeout time.Duration      // Bound on one save call
	LoadTimeout time.Duration      // Bound on the initial load
	IdleTTL     time.Duration      // Sessions without requests for this long are closed
	Scheduler   autosave.Scheduler // Timer source, wall clock when nil
}

// DefaultSessionConfig returns sensible defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SaveDelay:   autosave.DefaultDelay,
		SaveTimeout: 30 * time.Second,
		LoadTimeout: 30 * time.Second,
		IdleTTL:     30 * time.Minute,
	}
}

// SessionManager owns one Session per signed-in user
type SessionManager struct {
	store     domain.DashboardStore
	history   domain.TransactionHistoryReader
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	config    SessionConfig
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closing  map[*Session]struct{}
}

// NewSessionManager creates a SessionManager. history may be nil when the store keeps no history.
func NewSessionManager(store domain.DashboardStore, history domain.TransactionHistoryReader, logger zerolog.Logger, config SessionConfig) *SessionManager {
	defaults := DefaultSessionConfig()
	if config.SaveDelay <= 0 {
		config.SaveDelay = defaults.SaveDelay
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaults.IdleTTL
	}
	now := time.Now
	if config.Scheduler != nil {
		now = config.Scheduler.Now
	}
	return &SessionManager{
		store:     store,
		history:   history,
		publisher: websocket.NoOpPublisher{},
		logger:    logger.With().Str("component", "session_manager").Logger(),
		config:    config,
		now:       now,
		sessions:  make(map[string]*Session),
		closing:   make(map[*Session]struct{}),
	}
}

// SetEventPublisher sets the publisher for live ledger events
func (m *SessionManager) SetEventPublisher(publisher websocket.EventPublisher) {
	if publisher == nil {
		publisher = websocket.NoOpPublisher{}
	}
	m.publisher = publisher
}

// Open returns the user's session, creating and hydrating it on first use.
// Concurrent first requests wait for the same load.
func (m *SessionManager) Open(ctx context.Context, cred domain.Credential) (*Session, error) {
	if cred.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	var s *Session
	for s == nil {
		m.mu.Lock()
		live, ok := m.sessions[cred.Subject]
		if ok {
			s = live
			m.mu.Unlock()
			break
		}
		if prev := m.closingSession(cred.Subject); prev != nil {
			m.mu.Unlock()
			// a new session must not load before the exit save of the previous one has landed
			if err := prev.Wait(ctx); err != nil {
				return nil, err
			}
			m.mu.Lock()
			delete(m.closing, prev)
			m.mu.Unlock()
			continue
		}
		s = newSession(cred, m)
		m.sessions[cred.Subject] = s
		m.mu.Unlock()
		m.logger.Info().Str("subject", cred.Subject).Msg("Session opened")
	}

	s.touch(cred.Token, m.now())

	if err := s.hydrate(ctx, m.config.LoadTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns an existing session without creating one
func (m *SessionManager) Lookup(subject string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[subject]
	return s, ok
}

// Count returns the number of open sessions
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close flushes unsaved changes and removes the user's session.
// Reports whether a session existed.
func (m *SessionManager) Close(subject string) bool {
	m.mu.Lock()
	s, ok := m.sessions[subject]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, subject)
	m.closing[s] = struct{}{}
	// the exit save is started before the lock is released, so a concurrent Open always finds it
	saving := s.close()
	m.mu.Unlock()

	m.logger.Info().Str("subject", subject).Bool("flushed", saving).Msg("Session closed")
	go m.forget(s)
	return true
}

// closingSession returns a closed session of subject whose last save may still run. m.mu must be held.
func (m *SessionManager) closingSession(subject string) *Session {
	for s := range m.closing {
		if s.Subject() == subject {
			return s
		}
	}
	return nil
}

// forget drops a closed session once its last save has finished
func (m *SessionManager) forget(s *Session) {
	ctx := context.Background()
	if m.config.SaveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.SaveTimeout)
		defer cancel()
	}
	_ = s.Wait(ctx)

	m.mu.Lock()
	delete(m.closing, s)
	m.mu.Unlock()
}

// ReapIdle closes sessions that saw no request since before cutoff. Returns how many were closed.
func (m *SessionManager) ReapIdle(cutoff time.Time) int {
	m.mu.Lock()
	var idle []string
	for subject, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, subject)
		}
	}
	m.mu.Unlock()

	closed := 0
	for _, subject := range idle {
		if m.Close(subject) {
			closed++
		}
	}
	return closed
}

// Shutdown closes every session and waits for their final saves until ctx is done
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	subjects := make([]string, 0, len(m.sessions))
	for subject := range m.sessions {
		subjects = append(subjects, subject)
	}
	m.mu.Unlock()

	for _, subject := range subjects {
		m.Close(subject)
	}

	m.mu.Lock()
	pending := make([]*Session, 0, len(m.closing))
	for s := range m.closing {
		pending = append(pending, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range pending {
		if err := s.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if len(errs) > 0 {
		m.logger.Warn().Err(errs[0]).Int("sessions", len(pending)).Msg("Shutdown did not wait for every save")
		return errors.Join(errs...)
	}
	m.logger.Info().Int("sessions", len(pending)).Msg("All sessions flushed")
	return nil
}
