package cue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Action is the kind of command sent to the capture client.
type Action string

const (
	ActionPlay     Action = "play"
	ActionLoop     Action = "loop"
	ActionStopLoop Action = "stop_loop"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionStop     Action = "stop"
)

// Command is one instruction streamed to the capture client.
type Command struct {
	Action Action    `json:"action"`
	Cue    ID        `json:"cue,omitempty"`
	Asset  string    `json:"asset,omitempty"`
	At     time.Time `json:"at"`
}

// Dispatcher implements Player by streaming commands to subscribers (the
// capture client's cue stream) and pacing Play on catalog durations.
type Dispatcher struct {
	catalog Catalog
	log     *slog.Logger

	mu        sync.Mutex
	subs      map[int]chan Command
	nextSub   int
	interrupt chan struct{} // closed by StopAll to cut short in-flight plays
	loop      ID
	paused    bool
}

// NewDispatcher creates a dispatcher over the given catalog.
func NewDispatcher(catalog Catalog, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		catalog:   catalog,
		log:       log,
		subs:      make(map[int]chan Command),
		interrupt: make(chan struct{}),
	}
}

// Subscribe registers a command stream. The returned cancel removes it.
func (d *Dispatcher) Subscribe() (<-chan Command, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextSub
	d.nextSub++
	ch := make(chan Command, 16)
	d.subs[id] = ch
	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Ready implements Player: cues are only useful with a listener attached.
func (d *Dispatcher) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs) > 0
}

func (d *Dispatcher) publishLocked(cmd Command) {
	cmd.At = time.Now()
	for id, ch := range d.subs {
		select {
		case ch <- cmd:
		default:
			d.log.Warn("cue subscriber lagging, dropping command", "subscriber", id, "action", cmd.Action)
		}
	}
}

// Play implements Player. It publishes the play command, then waits out the
// clip's catalog duration. StopAll or ctx cancellation ends the wait early.
func (d *Dispatcher) Play(ctx context.Context, id ID) error {
	clip, ok := d.catalog[id]
	if !ok {
		return fmt.Errorf("unknown cue %q", id)
	}

	d.mu.Lock()
	d.publishLocked(Command{Action: ActionPlay, Cue: id, Asset: clip.Asset})
	interrupt := d.interrupt
	d.mu.Unlock()

	if clip.Duration <= 0 {
		return nil
	}
	t := time.NewTimer(clip.Duration)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-interrupt:
		return nil
	case <-t.C:
		return nil
	}
}

// Loop implements Player.
func (d *Dispatcher) Loop(id ID) {
	clip, ok := d.catalog[id]
	if !ok {
		d.log.Warn("loop requested for unknown cue", "cue", id)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loop = id
	d.publishLocked(Command{Action: ActionLoop, Cue: id, Asset: clip.Asset})
}

// StopLoop implements Player.
func (d *Dispatcher) StopLoop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loop == "" {
		return
	}
	d.publishLocked(Command{Action: ActionStopLoop, Cue: d.loop})
	d.loop = ""
}

// PauseAll implements Player.
func (d *Dispatcher) PauseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		return
	}
	d.paused = true
	d.publishLocked(Command{Action: ActionPause})
}

// ResumeAll implements Player.
func (d *Dispatcher) ResumeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.paused {
		return
	}
	d.paused = false
	d.publishLocked(Command{Action: ActionResume})
}

// StopAll implements Player. In-flight Play calls return immediately.
func (d *Dispatcher) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	close(d.interrupt)
	d.interrupt = make(chan struct{})
	d.loop = ""
	d.paused = false
	d.publishLocked(Command{Action: ActionStop})
}
