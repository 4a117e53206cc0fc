package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionReaper is a background worker that closes idle sessions
type SessionReaper struct {
	sessions *SessionManager
	logger   zerolog.Logger
	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// SessionReaperConfig holds configuration for the session reaper
type SessionReaperConfig struct {
	Interval time.Duration // How often to look for idle sessions
	IdleTTL  time.Duration // How long a session may go without requests
}

// DefaultSessionReaperConfig returns sensible defaults
func DefaultSessionReaperConfig() SessionReaperConfig {
	return SessionReaperConfig{
		Interval: 1 * time.Minute,
		IdleTTL:  30 * time.Minute,
	}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(sessions *SessionManager, logger zerolog.Logger, config SessionReaperConfig) *SessionReaper {
	defaults := DefaultSessionReaperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = sessions.config.IdleTTL
	}

	return &SessionReaper{
		sessions: sessions,
		logger:   logger.With().Str("component", "session_reaper").Logger(),
		interval: config.Interval,
		idleTTL:  config.IdleTTL,
		now:      sessions.now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep
func (r *SessionReaper) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info().
		Dur("interval", r.interval).
		Dur("idle_ttl", r.idleTTL).
		Msg("Starting session reaper")

	go r.run(ctx)
}

// Stop gracefully stops the reaper
func (r *SessionReaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.logger.Info().Msg("Stopping session reaper")
	close(r.stopCh)
	<-r.doneCh
	r.logger.Info().Msg("Session reaper stopped")
}

func (r *SessionReaper) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.setStopped()
			return
		case <-r.stopCh:
			r.setStopped()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *SessionReaper) setStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// Sweep closes every session idle for longer than the TTL. Returns how many were closed.
func (r *SessionReaper) Sweep() int {
	closed := r.sessions.ReapIdle(r.now().Add(-r.idleTTL))
	if closed > 0 {
		r.logger.Info().
			Int("closed", closed).
			Int("open", r.sessions.Count()).
			Msg("Closed idle sessions")
	}
	return closed
}

// IsRunning returns whether the reaper is currently running
func (r *SessionReaper) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
