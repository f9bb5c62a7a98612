// Package timer provides the cancellable timing primitives the exercise
// engine is built on: a self-rescheduling repeating timer with an explicit
// handle, and a pausable elapsed-time clock. Every polling loop in the
// engine goes through Repeating so that "every exit path cancels every
// timer" stays a checkable rule rather than a convention.
package timer

import (
	"sync"
	"time"
)

// Repeating invokes a callback at a fixed cadence until stopped.
type Repeating struct {
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRepeating starts a timer that calls fn every interval. The callback
// runs on the timer's own goroutine; callers guard shared state themselves.
func NewRepeating(interval time.Duration, fn func()) *Repeating {
	r := &Repeating{stop: make(chan struct{})}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-t.C:
				// Re-check before firing so a Stop that raced the tick wins.
				select {
				case <-r.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return r
}

// Stop cancels the timer. It is idempotent and safe to call from inside the
// callback itself; a tick already in flight may still complete.
func (r *Repeating) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// PausableClock measures elapsed wall time minus the total time spent
// paused. Elapsed never goes backwards and never exceeds raw wall time
// since Start.
type PausableClock struct {
	mu          sync.Mutex
	now         func() time.Time
	started     bool
	start       time.Time
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewPausableClock returns a stopped clock. Call Start to begin measuring.
func NewPausableClock() *PausableClock {
	return &PausableClock{now: time.Now}
}

// NewPausableClockAt is like NewPausableClock with an injectable time
// source, for tests.
func NewPausableClockAt(now func() time.Time) *PausableClock {
	return &PausableClock{now: now}
}

// Start begins (or restarts) the clock from zero.
func (c *PausableClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	c.start = c.now()
	c.paused = false
	c.totalPaused = 0
}

// Pause suspends the clock. Pausing an already-paused clock is a no-op.
func (c *PausableClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.now()
}

// Resume folds the just-finished pause interval into the paused total and
// lets the clock run again. Resuming a running clock is a no-op.
func (c *PausableClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.totalPaused += c.now().Sub(c.pausedAt)
	c.paused = false
}

// Elapsed returns wall time since Start minus all paused time. While paused
// the value is frozen.
func (c *PausableClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0
	}
	end := c.now()
	if c.paused {
		end = c.pausedAt
	}
	e := end.Sub(c.start) - c.totalPaused
	if e < 0 {
		return 0
	}
	return e
}

// TotalPaused returns the accumulated pause time, including the current
// pause interval if the clock is paused right now.
func (c *PausableClock) TotalPaused() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.totalPaused
	if c.paused {
		total += c.now().Sub(c.pausedAt)
	}
	return total
}

// Paused reports whether the clock is currently suspended.
func (c *PausableClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
