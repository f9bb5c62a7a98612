package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestRepeatingFires verifies the timer invokes its callback repeatedly
// until stopped, and stops firing afterwards.
func TestRepeatingFires(t *testing.T) {
	var count atomic.Int64
	r := NewRepeating(5*time.Millisecond, func() { count.Add(1) })

	time.Sleep(60 * time.Millisecond)
	r.Stop()
	fired := count.Load()
	if fired < 3 {
		t.Errorf("callback fired %d times in 60ms at 5ms cadence, want >= 3", fired)
	}

	time.Sleep(30 * time.Millisecond)
	if after := count.Load(); after > fired+1 {
		t.Errorf("callback fired %d more times after Stop", after-fired)
	}
}

// TestRepeatingStopIdempotent verifies Stop can be called repeatedly and
// from inside the callback without deadlocking.
func TestRepeatingStopIdempotent(t *testing.T) {
	var r *Repeating
	done := make(chan struct{})
	r = NewRepeating(time.Millisecond, func() {
		r.Stop() // self-stop from inside the callback
		select {
		case <-done:
		default:
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	r.Stop()
	r.Stop()
}

// TestPausableClockElapsed verifies elapsed = wall − Σ pauses with a fake
// time source.
func TestPausableClockElapsed(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewPausableClockAt(func() time.Time { return now })

	c.Start()
	now = now.Add(10 * time.Second)
	if got := c.Elapsed(); got != 10*time.Second {
		t.Errorf("Elapsed() = %v, want 10s", got)
	}

	c.Pause()
	now = now.Add(4 * time.Second)
	if got := c.Elapsed(); got != 10*time.Second {
		t.Errorf("Elapsed() while paused = %v, want frozen at 10s", got)
	}

	c.Resume()
	now = now.Add(3 * time.Second)
	if got := c.Elapsed(); got != 13*time.Second {
		t.Errorf("Elapsed() after resume = %v, want 13s", got)
	}
	if got := c.TotalPaused(); got != 4*time.Second {
		t.Errorf("TotalPaused() = %v, want 4s", got)
	}
}

// TestPausableClockNeverExceedsWall verifies elapsed <= wall time and is
// monotone across pause/resume cycles.
func TestPausableClockNeverExceedsWall(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewPausableClockAt(func() time.Time { return now })
	c.Start()

	var prev time.Duration
	wall := time.Duration(0)
	for i := 0; i < 10; i++ {
		now = now.Add(time.Second)
		wall += time.Second
		if i%3 == 0 {
			c.Pause()
		}
		if i%3 == 2 {
			c.Resume()
		}
		e := c.Elapsed()
		if e < prev {
			t.Fatalf("Elapsed() went backwards: %v -> %v", prev, e)
		}
		if e > wall {
			t.Fatalf("Elapsed() = %v exceeds wall time %v", e, wall)
		}
		prev = e
	}
}

// TestPausableClockIdempotentPauseResume verifies double Pause and double
// Resume are harmless.
func TestPausableClockIdempotentPauseResume(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewPausableClockAt(func() time.Time { return now })
	c.Start()

	c.Pause()
	c.Pause()
	now = now.Add(2 * time.Second)
	c.Resume()
	c.Resume()

	if got := c.TotalPaused(); got != 2*time.Second {
		t.Errorf("TotalPaused() = %v, want 2s (pause counted once)", got)
	}
	if got := c.Elapsed(); got != 0 {
		t.Errorf("Elapsed() = %v, want 0", got)
	}
}

// TestPausableClockNotStarted verifies a never-started clock reads zero.
func TestPausableClockNotStarted(t *testing.T) {
	c := NewPausableClock()
	if got := c.Elapsed(); got != 0 {
		t.Errorf("Elapsed() before Start = %v, want 0", got)
	}
	c.Pause() // must not panic or record anything
	if got := c.TotalPaused(); got != 0 {
		t.Errorf("TotalPaused() before Start = %v, want 0", got)
	}
}
