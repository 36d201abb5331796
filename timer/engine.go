// Package timer implements the one-second countdown that drives a pomodoro
// block. The engine performs no I/O: it counts down, can be paused, resumed
// or cancelled, and reports completion through a callback at most once per
// armed countdown.
package timer

import (
	"sync"
	"time"
)

// Tick is the interval between two countdown steps.
const Tick = time.Second

// Stopper withdraws a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler arranges for f to run once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealScheduler schedules callbacks on the wall clock.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickHook registers a function that observes the remaining seconds
// after every tick. It is called without the engine lock held.
func WithTickHook(fn func(remaining int)) Option {
	return func(e *Engine) {
		e.onTick = fn
	}
}

// Engine is a cooperative countdown timer. The zero value is not usable;
// create one with New.
type Engine struct {
	sched   Scheduler
	pending Stopper
	onDone  func()
	onTick  func(remaining int)
	mu      sync.Mutex
	// gen is bumped every time the pending tick is withdrawn so that a tick
	// which already fired cannot act on a newer countdown.
	gen       uint64
	remaining int
	armed     bool
	running   bool
}

// New returns an idle engine. onDone is invoked once whenever an armed
// countdown reaches zero.
func New(sched Scheduler, onDone func(), opts ...Option) *Engine {
	if sched == nil {
		sched = RealScheduler{}
	}

	e := &Engine{
		sched:  sched,
		onDone: onDone,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Arm sets the countdown to seconds and starts it.
func (e *Engine) Arm(seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration.Fmt(seconds)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.armed {
		return ErrAlreadyArmed
	}

	e.armed = true
	e.remaining = seconds
	e.running = true
	e.scheduleLocked()

	return nil
}

// Pause stops the countdown without losing the remaining time. Pausing a
// paused or unarmed engine does nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	e.withdrawLocked()
}

// Resume continues a paused countdown.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.armed || e.running || e.remaining <= 0 {
		return
	}

	e.running = true
	e.scheduleLocked()
}

// Cancel abandons the countdown. The engine can be armed again afterwards.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.withdrawLocked()
	e.armed = false
	e.running = false
	e.remaining = 0
}

// Remaining reports the seconds left and whether a countdown is armed.
func (e *Engine) Remaining() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.remaining, e.armed
}

// Running reports whether the countdown is advancing.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// Armed reports whether a countdown is set.
func (e *Engine) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.armed
}

func (e *Engine) scheduleLocked() {
	gen := e.gen

	e.pending = e.sched.AfterFunc(Tick, func() {
		e.tick(gen)
	})
}

func (e *Engine) withdrawLocked() {
	e.gen++

	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()

	if gen != e.gen || !e.running {
		e.mu.Unlock()
		return
	}

	e.pending = nil

	if e.remaining > 0 {
		e.remaining--
	}

	remaining := e.remaining
	done := remaining == 0

	if done {
		e.gen++
		e.running = false
		e.armed = false
	} else {
		e.scheduleLocked()
	}

	onTick := e.onTick
	onDone := e.onDone

	e.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}

	if done && onDone != nil {
		onDone()
	}
}
