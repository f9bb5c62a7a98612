package pose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves a settable sample. A nil sample means no pose data.
type fakeSource struct {
	mu sync.Mutex
	s  *Sample
}

func (f *fakeSource) set(s *Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.s = s
}

func (f *fakeSource) Current() *Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSource) Ready() bool { return f.Current() != nil }

func anySample() *Sample {
	return &Sample{Time: time.Now(), Points: map[Part]Point{}, Confidence: map[Part]float64{}}
}

// TestGateResolvesAfterUnbrokenHold verifies the gate resolves once the
// predicate holds for the full window, and reports a held duration of at
// least that window.
func TestGateResolvesAfterUnbrokenHold(t *testing.T) {
	src := &fakeSource{}
	src.set(anySample())
	g := NewGate(src, 5*time.Millisecond, testLogger())

	always := func(*Sample) (bool, error) { return true, nil }

	start := time.Now()
	held, err := g.Watch(context.Background(), always, 40*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if held < 40*time.Millisecond {
		t.Errorf("held = %v, want >= 40ms", held)
	}
	if waited := time.Since(start); waited < 40*time.Millisecond {
		t.Errorf("Watch resolved after %v, before the hold window elapsed", waited)
	}
}

// TestGateNoPartialCredit verifies that a single failing sample resets the
// accumulator: a predicate that fails every few samples never resolves.
func TestGateNoPartialCredit(t *testing.T) {
	src := &fakeSource{}
	src.set(anySample())
	g := NewGate(src, 5*time.Millisecond, testLogger())

	var n int
	flaky := func(*Sample) (bool, error) {
		n++
		return n%4 != 0, nil // fails every 4th sample, so max run ~15ms
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := g.Watch(ctx, flaky, 40*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Watch() with broken holds resolved (err = %v), want deadline", err)
	}
}

// TestGateMissingPoseResets verifies that a stretch without pose data
// counts as failing samples.
func TestGateMissingPoseResets(t *testing.T) {
	src := &fakeSource{} // no sample at all
	g := NewGate(src, 5*time.Millisecond, testLogger())

	always := func(*Sample) (bool, error) { return true, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if _, err := g.Watch(ctx, always, 20*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Watch() resolved without pose data (err = %v)", err)
	}
}

// TestGatePredicateErrorsSkipped verifies per-sample errors reset the hold
// but keep the loop sampling: once errors stop, the gate still resolves.
func TestGatePredicateErrorsSkipped(t *testing.T) {
	src := &fakeSource{}
	src.set(anySample())
	g := NewGate(src, 5*time.Millisecond, testLogger())

	var n int
	recovering := func(*Sample) (bool, error) {
		n++
		if n < 5 {
			return false, errors.New("landmark missing")
		}
		return true, nil
	}

	held, err := g.Watch(context.Background(), recovering, 25*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch() error = %v, want resolution after errors stop", err)
	}
	if held < 25*time.Millisecond {
		t.Errorf("held = %v, want >= 25ms", held)
	}
}

// TestGateAbandonedOnCancel verifies a cancelled watch returns promptly
// without resolving.
func TestGateAbandonedOnCancel(t *testing.T) {
	src := &fakeSource{}
	src.set(anySample())
	g := NewGate(src, 5*time.Millisecond, testLogger())

	never := func(*Sample) (bool, error) { return false, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.Watch(ctx, never, time.Hour)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
