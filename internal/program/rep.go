package program

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/config"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/cue"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/pose"
)

// repProgram is the shared control flow of the two repetition-based
// programs. Turn and tilt differ only in their intro cues, how the
// baseline is captured, and the two-phase table built from it.
type repProgram struct {
	id      ID
	deps    Deps
	intro   []cue.ID
	capture func(ctx context.Context, c *pose.Calibrator, e config.EngineConfig) (*pose.Baseline, error)
	plan    func(base *pose.Baseline, e config.EngineConfig) ([2]PhaseSpec, error)

	mu      sync.Mutex
	state   State
	cleaned bool
}

func (p *repProgram) ID() ID { return p.id }

func (p *repProgram) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == "" {
		return StateIdle
	}
	return p.state
}

func (p *repProgram) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func (p *repProgram) Initialize() error {
	return p.deps.check()
}

// Pause and Resume are best-effort no-ops here: a repetition program has no
// suspendable clock, and the orchestrator already pauses shared audio. A
// paused user simply stops satisfying the comparator, which resets the
// hold on its own.
func (p *repProgram) Pause()  {}
func (p *repProgram) Resume() {}

func (p *repProgram) Cleanup() {
	p.mu.Lock()
	if p.cleaned {
		p.mu.Unlock()
		return
	}
	p.cleaned = true
	p.mu.Unlock()
	p.deps.Cues.StopAll()
}

func (p *repProgram) Run(ctx context.Context) (*Result, error) {
	e := p.deps.Engine
	res := &Result{Program: p.id, StartedAt: time.Now()}
	p.setState(StateRunning)

	fail := func(err error) (*Result, error) {
		res.EndedAt = time.Now()
		p.setState(StateError)
		return res, err
	}

	for _, id := range p.intro {
		if err := p.deps.Cues.Play(ctx, id); err != nil {
			return fail(fmt.Errorf("playing intro cue %s: %w", id, err))
		}
	}
	if err := p.deps.Cues.Play(ctx, cue.CueCalibration); err != nil {
		return fail(fmt.Errorf("playing calibration cue: %w", err))
	}

	cal := pose.NewCalibrator(p.deps.Pose, e.SampleInterval(), e.MinConfidence, p.deps.Log)
	base, err := p.capture(ctx, cal, e)
	if err != nil {
		return fail(fmt.Errorf("capturing baseline: %w", err))
	}

	phases, err := p.plan(base, e)
	if err != nil {
		return fail(fmt.Errorf("building phase plan: %w", err))
	}

	gate := pose.NewGate(p.deps.Pose, e.SampleInterval(), p.deps.Log)
	runner := NewPhaseRunner(gate, p.deps.Cues, p.deps.Log)

	for rep := 1; rep <= e.MaxReps; rep++ {
		for _, spec := range phases {
			held, err := runner.Run(ctx, spec, rep == 1)
			if err != nil {
				return fail(fmt.Errorf("rep %d, %s: %w", rep, spec.Name, err))
			}
			res.TotalHold += held
		}
		res.CompletedReps = rep
		p.deps.Log.Info("repetition complete", "program", p.id, "rep", rep, "of", e.MaxReps)
	}

	if err := p.deps.Cues.Play(ctx, cue.CueComplete); err != nil {
		return fail(fmt.Errorf("playing completion cue: %w", err))
	}

	res.Completed = true
	res.EndedAt = time.Now()
	p.setState(StateDone)
	return res, nil
}

func newTurnProgram(deps Deps) Program {
	return &repProgram{
		id:    LateralTurn,
		deps:  deps,
		intro: []cue.ID{cue.CueTurnIntro},
		capture: func(ctx context.Context, c *pose.Calibrator, e config.EngineConfig) (*pose.Baseline, error) {
			return c.CapturePaired(ctx, e.CalibrationSettle(), e.CalibrationWindow())
		},
		plan: turnPhases,
	}
}

func turnPhases(base *pose.Baseline, e config.EngineConfig) ([2]PhaseSpec, error) {
	left, err := pose.TurnPredicate(base, pose.DirLeft, e.TurnThreshold, e.MinConfidence)
	if err != nil {
		return [2]PhaseSpec{}, err
	}
	right, err := pose.TurnPredicate(base, pose.DirRight, e.TurnThreshold, e.MinConfidence)
	if err != nil {
		return [2]PhaseSpec{}, err
	}
	return [2]PhaseSpec{
		{Name: "turn_left", Cue: cue.CueTurnLeft, OrientCue: cue.CueTurnOrientLeft, Predicate: left, Hold: e.Hold()},
		{Name: "turn_right", Cue: cue.CueTurnRight, OrientCue: cue.CueTurnOrientRight, Predicate: right, Hold: e.Hold()},
	}, nil
}

func newTiltProgram(deps Deps) Program {
	return &repProgram{
		id:    VerticalTilt,
		deps:  deps,
		intro: []cue.ID{cue.CueTiltIntro},
		capture: func(ctx context.Context, c *pose.Calibrator, e config.EngineConfig) (*pose.Baseline, error) {
			return c.CaptureScalar(ctx, e.CalibrationSettle(), e.CalibrationWindow())
		},
		plan: tiltPhases,
	}
}

func tiltPhases(base *pose.Baseline, e config.EngineConfig) ([2]PhaseSpec, error) {
	up, err := pose.TiltPredicate(base, pose.DirUp, e.TiltThreshold, e.MinConfidence)
	if err != nil {
		return [2]PhaseSpec{}, err
	}
	down, err := pose.TiltPredicate(base, pose.DirDown, e.TiltThreshold, e.MinConfidence)
	if err != nil {
		return [2]PhaseSpec{}, err
	}
	return [2]PhaseSpec{
		{Name: "tilt_up", Cue: cue.CueTiltUp, OrientCue: cue.CueTiltOrientUp, Predicate: up, Hold: e.Hold()},
		{Name: "tilt_down", Cue: cue.CueTiltDown, OrientCue: cue.CueTiltOrientDown, Predicate: down, Hold: e.Hold()},
	}, nil
}
