package cue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recvCommand(t *testing.T, ch <-chan Command) Command {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command received")
		return Command{}
	}
}

// TestPlayPublishesAndPaces verifies Play sends the command to subscribers
// and blocks for the catalog duration.
func TestPlayPublishesAndPaces(t *testing.T) {
	catalog := Catalog{CueConfirm: {Asset: "a.mp3", Duration: 30 * time.Millisecond}}
	d := NewDispatcher(catalog, testLogger())

	ch, cancel := d.Subscribe()
	defer cancel()

	start := time.Now()
	if err := d.Play(context.Background(), CueConfirm); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if waited := time.Since(start); waited < 30*time.Millisecond {
		t.Errorf("Play returned after %v, want >= clip duration 30ms", waited)
	}

	cmd := recvCommand(t, ch)
	if cmd.Action != ActionPlay || cmd.Cue != CueConfirm || cmd.Asset != "a.mp3" {
		t.Errorf("command = %+v, want play confirm_chime a.mp3", cmd)
	}
}

// TestPlayUnknownCue verifies an unknown id is an error, not a hang.
func TestPlayUnknownCue(t *testing.T) {
	d := NewDispatcher(Catalog{}, testLogger())
	if err := d.Play(context.Background(), "nope"); err == nil {
		t.Error("Play(unknown) = nil error, want failure")
	}
}

// TestStopAllInterruptsPlay verifies StopAll cuts short an in-flight Play.
func TestStopAllInterruptsPlay(t *testing.T) {
	catalog := Catalog{CueComplete: {Asset: "c.mp3", Duration: time.Hour}}
	d := NewDispatcher(catalog, testLogger())

	done := make(chan error, 1)
	go func() { done <- d.Play(context.Background(), CueComplete) }()

	time.Sleep(10 * time.Millisecond)
	d.StopAll()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("interrupted Play() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after StopAll")
	}
}

// TestLoopStopLoop verifies loop bracketing and that StopLoop without a
// loop is a no-op.
func TestLoopStopLoop(t *testing.T) {
	d := NewDispatcher(DefaultCatalog(), testLogger())
	ch, cancel := d.Subscribe()
	defer cancel()

	d.StopLoop() // nothing looping: no command
	select {
	case cmd := <-ch:
		t.Fatalf("StopLoop without loop published %+v", cmd)
	case <-time.After(10 * time.Millisecond):
	}

	d.Loop(CueCorrectionLoop)
	if cmd := recvCommand(t, ch); cmd.Action != ActionLoop || cmd.Cue != CueCorrectionLoop {
		t.Errorf("command = %+v, want loop correction_loop", cmd)
	}

	d.StopLoop()
	if cmd := recvCommand(t, ch); cmd.Action != ActionStopLoop {
		t.Errorf("command = %+v, want stop_loop", cmd)
	}
}

// TestPauseResumeIdempotent verifies duplicate pause/resume publish once.
func TestPauseResumeIdempotent(t *testing.T) {
	d := NewDispatcher(DefaultCatalog(), testLogger())
	ch, cancel := d.Subscribe()
	defer cancel()

	d.PauseAll()
	d.PauseAll()
	if cmd := recvCommand(t, ch); cmd.Action != ActionPause {
		t.Errorf("command = %+v, want pause", cmd)
	}
	select {
	case cmd := <-ch:
		t.Fatalf("second PauseAll published %+v", cmd)
	case <-time.After(10 * time.Millisecond):
	}

	d.ResumeAll()
	if cmd := recvCommand(t, ch); cmd.Action != ActionResume {
		t.Errorf("command = %+v, want resume", cmd)
	}
}

// TestReady verifies readiness tracks subscribers.
func TestReady(t *testing.T) {
	d := NewDispatcher(DefaultCatalog(), testLogger())
	if d.Ready() {
		t.Error("Ready() = true with no subscribers")
	}
	_, cancel := d.Subscribe()
	if !d.Ready() {
		t.Error("Ready() = false with a subscriber")
	}
	cancel()
	if d.Ready() {
		t.Error("Ready() = true after subscriber cancelled")
	}
}
