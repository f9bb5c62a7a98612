// Package session owns the single-session lifecycle: one orchestrator, one
// active program at a time, an explicit transition table, and events for
// anything that wants to observe the session from outside.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

// State is the orchestrator's lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StatePaused       State = "paused"
	StateCompleted    State = "completed"
	StateError        State = "error"
)

// transitions is the allow-list of legal lifecycle moves. Anything not in
// the table is rejected and logged, never an error to the caller.
var transitions = map[State][]State{
	StateIdle:         {StateInitializing},
	StateInitializing: {StateRunning, StateError},
	StateRunning:      {StatePaused, StateCompleted, StateError},
	StatePaused:       {StateRunning, StateCompleted, StateError},
	StateCompleted:    {StateIdle},
	StateError:        {StateIdle},
}

// ErrAlreadyRunning is returned by Start when a session is in flight.
var ErrAlreadyRunning = errors.New("a session is already running")

// Store persists a finished session. runErr carries the error a failed
// session ended with. Persistence is best-effort; a store failure never
// disturbs the lifecycle.
type Store interface {
	SaveResult(ctx context.Context, sessionID uuid.UUID, res *program.Result, runErr error) error
}

// Factory builds a program for an id. Swappable for tests.
type Factory func(id program.ID, deps program.Deps) (program.Program, error)

// Orchestrator runs at most one exercise session at a time and walks it
// through the lifecycle table above.
type Orchestrator struct {
	deps    program.Deps
	store   Store
	log     *slog.Logger
	factory Factory

	mu        sync.Mutex
	state     State
	sessionID uuid.UUID
	prog      program.Program
	cancel    context.CancelFunc
	listeners []Listener
}

// New creates an idle orchestrator. store may be nil to skip persistence.
func New(deps program.Deps, store Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		deps:    deps,
		store:   store,
		log:     log,
		factory: program.New,
		state:   StateIdle,
	}
}

// Subscribe registers a listener for session events.
func (o *Orchestrator) Subscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Status is a point-in-time snapshot of the orchestrator.
type Status struct {
	State            State      `json:"state"`
	SessionID        uuid.UUID  `json:"session_id,omitempty"`
	Program          program.ID `json:"program,omitempty"`
	HasActiveProgram bool       `json:"has_active_program"`
	ActiveResources  []string   `json:"active_resources"`
}

// Status reports the current state for the status endpoint.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := Status{State: o.state, SessionID: o.sessionID, ActiveResources: []string{}}
	if o.prog != nil {
		s.HasActiveProgram = true
		s.Program = o.prog.ID()
		s.ActiveResources = append(s.ActiveResources, "program")
	}
	if o.cancel != nil {
		s.ActiveResources = append(s.ActiveResources, "run_context")
	}
	return s
}

// transitionLocked moves to next if the table allows it. Returns whether
// the move happened. Callers hold o.mu.
func (o *Orchestrator) transitionLocked(next State) bool {
	for _, allowed := range transitions[o.state] {
		if allowed == next {
			change := StateChange{
				SessionID: o.sessionID,
				From:      o.state,
				To:        next,
				At:        time.Now(),
			}
			if o.prog != nil {
				change.Program = o.prog.ID()
			}
			o.state = next
			o.log.Info("session state", "from", change.From, "to", change.To, "session", change.SessionID)
			for _, l := range o.listeners {
				l.SessionStateChanged(change)
			}
			return true
		}
	}
	o.log.Warn("rejected session transition", "from", o.state, "to", next)
	return false
}

// Start begins a session running the named program. It returns once the
// program is initialized and running; the pipeline itself proceeds on a
// background goroutine until completion, error, or Stop.
func (o *Orchestrator) Start(id program.ID) (uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle {
		return uuid.Nil, fmt.Errorf("%w: state %s", ErrAlreadyRunning, o.state)
	}

	prog, err := o.factory(id, o.deps)
	if err != nil {
		return uuid.Nil, err
	}

	// Initialization failures leave the orchestrator idle: nothing was
	// started, so there is nothing to tear down.
	if err := prog.Initialize(); err != nil {
		return uuid.Nil, fmt.Errorf("initializing %s: %w", id, err)
	}

	o.sessionID = uuid.New()
	o.prog = prog
	o.transitionLocked(StateInitializing)
	o.transitionLocked(StateRunning)

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	go o.run(ctx, o.sessionID, prog)
	return o.sessionID, nil
}

func (o *Orchestrator) run(ctx context.Context, id uuid.UUID, prog program.Program) {
	res, err := prog.Run(ctx)
	o.finish(id, prog, res, err)
}

// finish settles a session after its pipeline returns. A Stop that raced
// the pipeline wins: if the session id no longer matches, the pipeline's
// outcome is dropped.
func (o *Orchestrator) finish(id uuid.UUID, prog program.Program, res *program.Result, err error) {
	o.mu.Lock()
	if o.sessionID != id || o.state == StateIdle {
		o.mu.Unlock()
		return
	}

	o.safeCleanup(prog)

	if err != nil {
		o.transitionLocked(StateError)
	} else {
		o.transitionLocked(StateCompleted)
	}

	completion := Completion{SessionID: id, Program: prog.ID(), Result: res, Err: err}
	if res != nil {
		completion.Message = res.HumanMessage()
	}
	if err != nil {
		completion.Message = fmt.Sprintf("Session ended: %v", err)
	}
	listeners := append([]Listener(nil), o.listeners...)

	// Terminal states immediately give way to idle so the next Start
	// needs no acknowledgement step.
	o.transitionLocked(StateIdle)
	o.prog = nil
	o.cancel = nil
	o.mu.Unlock()

	for _, l := range listeners {
		l.SessionCompleted(completion)
	}

	if o.store != nil && res != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := o.store.SaveResult(saveCtx, id, res, err); serr != nil {
			o.log.Error("persisting session result", "session", id, "error", serr)
		}
	}
}

// Pause suspends a running session. Ignored in any other state.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.transitionLocked(StatePaused) {
		return
	}
	o.deps.Cues.PauseAll()
	if o.prog != nil {
		o.prog.Pause()
	}
}

// Resume continues a paused session. Ignored in any other state.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePaused {
		o.log.Warn("rejected session transition", "from", o.state, "to", StateRunning)
		return
	}
	o.transitionLocked(StateRunning)
	o.deps.Cues.ResumeAll()
	if o.prog != nil {
		o.prog.Resume()
	}
}

// Stop force-ends the session from any state. Idempotent; each teardown
// step is individually guarded so one failure cannot strand the rest.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateIdle {
		return
	}

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.prog != nil {
		o.safeCleanup(o.prog)
	}
	o.safeStep("stopping cues", o.deps.Cues.StopAll)

	// Stop overrides the transition table: whatever was in flight, the
	// orchestrator lands on idle.
	change := StateChange{SessionID: o.sessionID, From: o.state, To: StateIdle, At: time.Now()}
	if o.prog != nil {
		change.Program = o.prog.ID()
	}
	o.state = StateIdle
	o.prog = nil
	o.log.Info("session stopped", "session", change.SessionID, "from", change.From)
	for _, l := range o.listeners {
		l.SessionStateChanged(change)
	}
}

// safeCleanup runs a program's Cleanup, containing a panic to a log line.
func (o *Orchestrator) safeCleanup(p program.Program) {
	o.safeStep("program cleanup", p.Cleanup)
}

func (o *Orchestrator) safeStep(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("teardown step panicked", "step", name, "panic", r)
		}
	}()
	fn()
}
