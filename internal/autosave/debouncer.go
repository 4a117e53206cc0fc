package autosave

import (
	"sync"
	"time"
)

// State is the debouncer state
type State int

const (
	// StateIdle means no save is scheduled
	StateIdle State = iota
	// StatePending means a save is scheduled for the current deadline
	StatePending
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	default:
		return "idle"
	}
}

// Timer is a cancellable scheduled callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler creates timers
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (systemScheduler) Now() time.Time {
	return time.Now()
}

// SystemScheduler schedules on the wall clock
var SystemScheduler Scheduler = systemScheduler{}

// Debouncer coalesces bursts of change notifications into a single callback
// that runs once the quiet period has elapsed after the last notification.
//
// Transitions:
//
//	Idle    --Notify-->  Pending(now+delay)
//	Pending --Notify-->  Pending(now+delay)   previous timer cancelled
//	Pending --timer-->   Idle                  callback runs
//	Pending --Flush-->   Idle                  callback does not run
//
// Every scheduled timer carries the generation it was created for, so a timer
// that fires after being superseded or cancelled is ignored.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	scheduler  Scheduler
	onFire     func()
	state      State
	deadline   time.Time
	timer      Timer
	generation uint64
	stopped    bool
}

// NewDebouncer creates a debouncer that calls onFire after delay of quiet.
// A nil scheduler uses the wall clock.
func NewDebouncer(delay time.Duration, scheduler Scheduler, onFire func()) *Debouncer {
	if scheduler == nil {
		scheduler = SystemScheduler
	}
	return &Debouncer{
		delay:     delay,
		scheduler: scheduler,
		onFire:    onFire,
	}
}

// Notify records a change and (re)starts the quiet period
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.generation++
	gen := d.generation
	d.state = StatePending
	d.deadline = d.scheduler.Now().Add(d.delay)
	d.timer = d.scheduler.AfterFunc(d.delay, func() { d.expire(gen) })
}

// Flush cancels a pending timer without running the callback.
// Reports whether a callback was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Stop cancels a pending timer and turns every later Notify into a no-op.
// Reports whether a callback was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return d.cancelLocked()
}

// State returns the current state and, when pending, the deadline
func (d *Debouncer) State() (State, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StatePending {
		return StateIdle, time.Time{}
	}
	return d.state, d.deadline
}

func (d *Debouncer) cancelLocked() bool {
	if d.state != StatePending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	// invalidate the cancelled timer in case it already fired and is waiting on the lock
	d.generation++
	d.timer = nil
	d.state = StateIdle
	d.deadline = time.Time{}
	return true
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.generation || d.state != StatePending {
		d.mu.Unlock()
		return
	}
	d.state = StateIdle
	d.timer = nil
	d.deadline = time.Time{}
	d.mu.Unlock()

	if d.onFire != nil {
		d.onFire()
	}
}
