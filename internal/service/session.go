package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/autosave"
	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SyncStatus describes how the session ledger relates to the remote copy
type SyncStatus struct {
	autosave.Status
	Revision   uint64 `json:"revision"`
	LoadFailed bool   `json:"loadFailed"`
	LoadError  string `json:"loadError,omitempty"`
}

// Session owns the ledger of one signed-in user. Mutations are serialized behind mu;
// network work (hydration, saves) runs on other goroutines and never holds mu.
type Session struct {
	subject   string
	store     domain.DashboardStore
	history   domain.TransactionHistoryReader
	publisher websocket.EventPublisher
	logger    zerolog.Logger

	mu           sync.Mutex
	token        string
	ledger       *domain.Ledger
	revision     uint64
	transactions []domain.TransactionRecord
	loadErr      error
	historyErr   error
	lastSeen     time.Time
	closed       bool

	hydrateOnce sync.Once
	hydrated    chan struct{}

	controller *autosave.Controller
}

func newSession(cred domain.Credential, m *SessionManager) *Session {
	s := &Session{
		subject:      cred.Subject,
		store:        m.store,
		history:      m.history,
		publisher:    m.publisher,
		logger:       m.logger.With().Str("subject", cred.Subject).Logger(),
		token:        cred.Token,
		ledger:       domain.NewLedger(),
		transactions: []domain.TransactionRecord{},
		lastSeen:     m.now(),
		hydrated:     make(chan struct{}),
	}
	s.controller = autosave.NewController(autosave.Config{
		Delay:       m.config.SaveDelay,
		SaveTimeout: m.config.SaveTimeout,
		Scheduler:   m.config.Scheduler,
	}, s, s, s, s.logger)
	return s
}

// Subject returns the user the session belongs to
func (s *Session) Subject() string {
	return s.subject
}

// touch records activity and picks up a refreshed token
func (s *Session) touch(token string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != "" {
		s.token = token
	}
	s.lastSeen = at
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) credential() domain.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Credential{Subject: s.subject, Token: s.token}
}

// hydrate loads the remote snapshot and history exactly once. Waiters give up when
// ctx is done; the load itself keeps running on a context detached from the request.
func (s *Session) hydrate(ctx context.Context, timeout time.Duration) error {
	s.hydrateOnce.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		go s.load(loadCtx, timeout)
	})

	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) load(ctx context.Context, timeout time.Duration) {
	defer close(s.hydrated)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cred := s.credential()
	var (
		doc        *domain.DashboardDocument
		items      []domain.TransactionRecord
		loadErr    error
		historyErr error
	)

	// the two reads fail independently, so neither goroutine cancels the other
	var g errgroup.Group
	g.Go(func() error {
		doc, loadErr = s.store.LoadDashboard(ctx, cred)
		return loadErr
	})
	if s.history != nil {
		g.Go(func() error {
			raw, err := s.history.LoadTransactionHistory(ctx, cred)
			if err != nil {
				historyErr = err
				return err
			}
			items = NormalizeTransactions(raw)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	if loadErr == nil {
		// never replace a ledger that has already been edited
		if s.revision == 0 {
			s.ledger = NormalizeDashboard(doc)
		}
	} else {
		s.loadErr = loadErr
	}
	if historyErr == nil && items != nil {
		s.transactions = items
	} else if historyErr != nil {
		s.historyErr = historyErr
	}
	revision := s.revision
	s.mu.Unlock()

	if loadErr != nil {
		s.logger.Error().Err(loadErr).Msg("Failed to load dashboard, starting with an empty ledger")
		s.publisher.Publish(s.subject, websocket.LedgerLoadFailed(loadErr))
		return
	}
	if historyErr != nil {
		s.logger.Warn().Err(historyErr).Msg("Failed to load transaction history")
	}

	s.controller.MarkSaved(revision)
	s.logger.Debug().Uint64("revision", revision).Msg("Session hydrated")
}

// Snapshot implements autosave.SnapshotSource
func (s *Session) Snapshot() (*domain.Ledger, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone(), s.revision
}

// Save implements autosave.Saver
func (s *Session) Save(ctx context.Context, snapshot *domain.Ledger) error {
	doc, err := domain.NewDashboardDocument(snapshot)
	if err != nil {
		return err
	}
	if err := s.store.SaveDashboard(ctx, s.credential(), doc); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", s.subject, err)
	}
	return nil
}

// SaveSucceeded implements autosave.Reporter
func (s *Session) SaveSucceeded(revision uint64, at time.Time) {
	s.publisher.Publish(s.subject, websocket.LedgerSaved(revision, at))
}

// SaveFailed implements autosave.Reporter
func (s *Session) SaveFailed(revision uint64, err error) {
	s.publisher.Publish(s.subject, websocket.LedgerSaveFailed(revision, err))
}

// Read runs fn against the ledger under the session lock. fn must not retain l.
func (s *Session) Read(fn func(l *domain.Ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ledger)
}

// Apply runs a mutation under the session lock. When fn reports a change the revision
// is bumped, the autosave timer restarts and subscribers get the recomputed summary.
// fn must validate before mutating so that a returned error leaves the ledger untouched.
func (s *Session) Apply(fn func(l *domain.Ledger) (bool, error)) (*domain.DashboardSummary, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	changed, err := fn(s.ledger)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	summary := BuildSummary(s.ledger)
	if changed {
		s.revision++
		s.controller.Changed(s.revision)
	}
	s.mu.Unlock()

	if changed {
		s.publisher.Publish(s.subject, websocket.LedgerUpdated(summary))
	}
	return summary, nil
}

// Transactions returns the history loaded at hydration
func (s *Session) Transactions() ([]domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	out := make([]domain.TransactionRecord, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

// Status returns the sync status
func (s *Session) Status() SyncStatus {
	st := SyncStatus{Status: s.controller.Status()}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.Revision = s.revision
	if s.loadErr != nil {
		st.LoadFailed = true
		st.LoadError = s.loadErr.Error()
	}
	return st
}

// Flush saves unsaved changes now. Reports whether a save was started.
func (s *Session) Flush() bool {
	return s.controller.Flush()
}

// close flushes and refuses further mutations
func (s *Session) close() bool {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.controller.Close()
}

// Wait blocks until in-flight saves finish or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	return s.controller.Wait(ctx)
}
