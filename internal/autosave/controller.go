package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultDelay is the quiet period between the last change and the save
const DefaultDelay = 800 * time.Millisecond

// SnapshotSource hands out a deep copy of the current ledger together with the
// revision that copy reflects. Both must be read under the same lock.
type SnapshotSource interface {
	Snapshot() (*domain.Ledger, uint64)
}

// Saver persists a full ledger snapshot
type Saver interface {
	Save(ctx context.Context, snapshot *domain.Ledger) error
}

// Reporter is told about save outcomes
type Reporter interface {
	SaveSucceeded(revision uint64, at time.Time)
	SaveFailed(revision uint64, err error)
}

// Config holds controller settings
type Config struct {
	Delay       time.Duration
	SaveTimeout time.Duration
	Scheduler   Scheduler
}

// Status is the observable sync state of one ledger
type Status struct {
	State          string     `json:"state"`
	Saving         bool       `json:"saving"`
	UnsavedChanges bool       `json:"unsavedChanges"`
	LastSavedAt    *time.Time `json:"lastSavedAt,omitempty"`
	LastError      string     `json:"lastError,omitempty"`
}

// Controller keeps the remote store eventually consistent with a ledger.
// Each change restarts the debounce timer; when it fires the current snapshot is
// saved once in the background. Saves are never retried automatically, the next
// change schedules another attempt.
type Controller struct {
	source    SnapshotSource
	saver     Saver
	reporter  Reporter
	logger    zerolog.Logger
	timeout   time.Duration
	scheduler Scheduler
	debouncer *Debouncer

	mu            sync.Mutex
	revision      uint64
	savedRevision uint64
	lastSavedAt   time.Time
	lastError     error
	inFlight      int
	closed        bool
	wg            sync.WaitGroup
}

// NewController creates a controller. reporter may be nil.
func NewController(cfg Config, source SnapshotSource, saver Saver, reporter Reporter, logger zerolog.Logger) *Controller {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler
	}
	c := &Controller{
		source:    source,
		saver:     saver,
		reporter:  reporter,
		logger:    logger.With().Str("component", "autosave").Logger(),
		timeout:   cfg.SaveTimeout,
		scheduler: cfg.Scheduler,
	}
	c.debouncer = NewDebouncer(cfg.Delay, cfg.Scheduler, c.onTimer)
	return c
}

// Changed records that the ledger moved to revision and restarts the quiet period.
// Changes after Close are ignored.
func (c *Controller) Changed(revision uint64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if revision > c.revision {
		c.revision = revision
	}
	c.mu.Unlock()

	c.debouncer.Notify()
}

// MarkSaved records that revision is already persisted, e.g. right after hydration
func (c *Controller) MarkSaved(revision uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if revision > c.revision {
		c.revision = revision
	}
	if revision > c.savedRevision {
		c.savedRevision = revision
	}
}

// Flush cancels the pending timer and, when there are unsaved changes, starts an
// immediate save without waiting for it. Reports whether a save was started.
func (c *Controller) Flush() bool {
	c.debouncer.Flush()
	return c.startSave("flush")
}

// Close performs a final flush and stops the controller
func (c *Controller) Close() bool {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	return c.startSave("exit")
}

// Wait blocks until every started save has finished or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current sync state
func (c *Controller) Status() Status {
	state, _ := c.debouncer.State()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:          state.String(),
		Saving:         c.inFlight > 0,
		UnsavedChanges: c.revision > c.savedRevision,
	}
	if st.Saving && state == StateIdle {
		st.State = "saving"
	}
	if !c.lastSavedAt.IsZero() {
		at := c.lastSavedAt
		st.LastSavedAt = &at
	}
	if c.lastError != nil {
		st.LastError = c.lastError.Error()
	}
	return st
}

func (c *Controller) onTimer() {
	c.startSave("debounce")
}

func (c *Controller) startSave(trigger string) bool {
	c.mu.Lock()
	unsaved := c.revision > c.savedRevision
	c.mu.Unlock()
	if !unsaved {
		return false
	}

	// the source takes the ledger lock, so it must not be called while holding c.mu
	snapshot, revision := c.source.Snapshot()

	c.mu.Lock()
	if revision <= c.savedRevision {
		c.mu.Unlock()
		return false
	}
	c.inFlight++
	c.wg.Add(1)
	c.mu.Unlock()

	go c.save(snapshot, revision, trigger)
	return true
}

func (c *Controller) save(snapshot *domain.Ledger, revision uint64, trigger string) {
	defer c.wg.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.saver.Save(ctx, snapshot)
	now := c.scheduler.Now()

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		c.lastError = err
	} else {
		if revision > c.savedRevision {
			c.savedRevision = revision
		}
		c.lastSavedAt = now
		c.lastError = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).Uint64("revision", revision).Str("trigger", trigger).Msg("Failed to save ledger snapshot")
		if c.reporter != nil {
			c.reporter.SaveFailed(revision, err)
		}
		return
	}

	c.logger.Debug().Uint64("revision", revision).Str("trigger", trigger).Msg("Ledger snapshot saved")
	if c.reporter != nil {
		c.reporter.SaveSucceeded(revision, now)
	}
}
