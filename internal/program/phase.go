package program

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/cue"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/pose"
)

// PhaseSpec describes one directional sub-step of a repetition: which cue
// announces it, which comparator confirms it, and how long the pose must
// be held.
type PhaseSpec struct {
	Name      string
	Cue       cue.ID
	OrientCue cue.ID // played once, on the first repetition only
	Predicate pose.Predicate
	Hold      time.Duration
}

// PhaseRunner executes phases: directional cue, sustained-hold gate,
// confirmation chime. Both repetition programs share it and differ only in
// their phase tables.
type PhaseRunner struct {
	gate *pose.Gate
	cues cue.Player
	log  *slog.Logger
}

// NewPhaseRunner creates a runner over the given gate and cue player.
func NewPhaseRunner(gate *pose.Gate, cues cue.Player, log *slog.Logger) *PhaseRunner {
	return &PhaseRunner{gate: gate, cues: cues, log: log}
}

// Run executes one phase and returns the confirmed hold duration, measured
// from the start of the unbroken hold to confirmation — not phase wall
// time. There is no timeout: the gate waits as long as the user needs.
func (r *PhaseRunner) Run(ctx context.Context, spec PhaseSpec, firstRep bool) (time.Duration, error) {
	if err := r.cues.Play(ctx, spec.Cue); err != nil {
		return 0, fmt.Errorf("playing %s cue: %w", spec.Name, err)
	}
	if firstRep && spec.OrientCue != "" {
		if err := r.cues.Play(ctx, spec.OrientCue); err != nil {
			return 0, fmt.Errorf("playing %s orientation cue: %w", spec.Name, err)
		}
	}

	held, err := r.gate.Watch(ctx, spec.Predicate, spec.Hold)
	if err != nil {
		return 0, fmt.Errorf("waiting for %s hold: %w", spec.Name, err)
	}

	if err := r.cues.Play(ctx, cue.CueConfirm); err != nil {
		return held, fmt.Errorf("playing confirmation: %w", err)
	}
	r.log.Info("phase confirmed", "phase", spec.Name, "held", held)
	return held, nil
}
