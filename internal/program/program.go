// Package program implements the three exercise programs the orchestrator
// can run: lateral head turns, vertical head tilts, and the breathing-hold
// meditation. Each program drives the same stage pipeline — scripted cues,
// calibration, a program-specific loop, completion — with every stage an
// awaited, cancellable step.
package program

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/config"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/cue"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/pose"
)

// ID names a program.
type ID string

const (
	LateralTurn   ID = "lateral_turn"
	VerticalTilt  ID = "vertical_tilt"
	BreathingHold ID = "breathing_hold"
)

// All returns every known program id.
func All() []ID {
	return []ID{LateralTurn, VerticalTilt, BreathingHold}
}

// ParseID validates a program id from the wire.
func ParseID(s string) (ID, error) {
	for _, id := range All() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown program %q", s)
}

// State is a program's internal lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// ErrNotReady means a required collaborator (pose source, cue player) is
// not initialized. Fatal to starting a session; there is no retry.
var ErrNotReady = errors.New("collaborator not ready")

// Deps are the shared collaborators injected into every program.
type Deps struct {
	Pose   pose.Source
	Cues   cue.Player
	Engine config.EngineConfig
	Log    *slog.Logger
}

func (d Deps) check() error {
	if !d.Pose.Ready() {
		return fmt.Errorf("%w: pose source", ErrNotReady)
	}
	if !d.Cues.Ready() {
		return fmt.Errorf("%w: cue player", ErrNotReady)
	}
	return nil
}

// Program is the contract every exercise program satisfies. Run executes
// the full pipeline and resolves on completion; cancelling its context
// abandons the session. Cleanup is idempotent and releases any audio or
// timers the program holds.
type Program interface {
	ID() ID
	Initialize() error
	Run(ctx context.Context) (*Result, error)
	Pause()
	Resume()
	State() State
	Cleanup()
}

// New constructs the program for the given id.
func New(id ID, deps Deps) (Program, error) {
	switch id {
	case LateralTurn:
		return newTurnProgram(deps), nil
	case VerticalTilt:
		return newTiltProgram(deps), nil
	case BreathingHold:
		return NewMeditation(deps), nil
	default:
		return nil, fmt.Errorf("unknown program %q", id)
	}
}

// wait sleeps for d or until ctx is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
