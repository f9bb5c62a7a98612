package program

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/cue"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/pose"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/timer"
)

// MeditationProgram runs the breathing-hold meditation: an averaged
// baseline, a short stabilization delay, then a timed sit where the clock
// only advances while posture stays within tolerance. Two independent
// timers drive the loop — a clock check and a posture watchdog — and the
// guard flags on the shared loop state, not timer ordering, carry the
// correctness argument.
type MeditationProgram struct {
	deps Deps

	mu      sync.Mutex
	state   State
	loop    *meditationLoop
	cleaned bool
}

// NewMeditation constructs the meditation program.
func NewMeditation(deps Deps) *MeditationProgram {
	return &MeditationProgram{deps: deps, state: StateIdle}
}

func (p *MeditationProgram) ID() ID { return BreathingHold }

func (p *MeditationProgram) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *MeditationProgram) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func (p *MeditationProgram) Initialize() error {
	return p.deps.check()
}

func (p *MeditationProgram) Run(ctx context.Context) (*Result, error) {
	e := p.deps.Engine
	res := &Result{Program: BreathingHold, StartedAt: time.Now()}
	p.setState(StateRunning)

	fail := func(err error) (*Result, error) {
		res.EndedAt = time.Now()
		p.setState(StateError)
		return res, err
	}

	if err := p.deps.Cues.Play(ctx, cue.CueMeditationIntro); err != nil {
		return fail(fmt.Errorf("playing intro cue: %w", err))
	}
	if err := p.deps.Cues.Play(ctx, cue.CueCalibration); err != nil {
		return fail(fmt.Errorf("playing calibration cue: %w", err))
	}

	cal := pose.NewCalibrator(p.deps.Pose, e.SampleInterval(), e.MinConfidence, p.deps.Log)
	base, err := cal.CaptureAveraged(ctx, e.CalibrationWindow())
	if err != nil {
		return fail(fmt.Errorf("capturing baseline: %w", err))
	}

	// Let the user settle into position before the watchdog goes live.
	if err := wait(ctx, e.Stabilization()); err != nil {
		return fail(err)
	}

	loop := newMeditationLoop(p.deps, base)
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()

	loop.start(e.ClockTick(), e.WatchdogInterval())
	defer loop.shutdown()

	select {
	case <-ctx.Done():
		res.Deviations, res.TotalCorrection = loop.totals()
		return fail(ctx.Err())
	case <-loop.finished:
	}

	res.Deviations, res.TotalCorrection = loop.totals()

	if err := p.deps.Cues.Play(ctx, cue.CueMeditationComplete); err != nil {
		return fail(fmt.Errorf("playing completion cue: %w", err))
	}

	res.Completed = true
	res.EndedAt = time.Now()
	p.setState(StateDone)
	return res, nil
}

// Pause suspends the meditation clock without losing progress.
func (p *MeditationProgram) Pause() {
	p.mu.Lock()
	loop := p.loop
	p.mu.Unlock()
	if loop != nil {
		loop.pause()
	}
}

// Resume lets the clock run again.
func (p *MeditationProgram) Resume() {
	p.mu.Lock()
	loop := p.loop
	p.mu.Unlock()
	if loop != nil {
		loop.resume()
	}
}

func (p *MeditationProgram) Cleanup() {
	p.mu.Lock()
	if p.cleaned {
		p.mu.Unlock()
		return
	}
	p.cleaned = true
	loop := p.loop
	p.mu.Unlock()

	if loop != nil {
		loop.shutdown()
	}
	p.deps.Cues.StopAll()
}

// meditationLoop is the shared state of the clock-check and posture
// watchdog timers. All fields behind mu; the clock has its own lock and is
// safe to touch while holding mu.
type meditationLoop struct {
	src       pose.Source
	cues      cue.Player
	log       *slog.Logger
	base      *pose.Baseline
	threshold float64
	minConf   float64
	target    time.Duration
	grace     time.Duration

	clock    *timer.PausableClock
	finished chan struct{} // closed exactly once when the target is reached

	mu              sync.Mutex
	tick            *timer.Repeating
	watchdog        *timer.Repeating
	graceTimer      *time.Timer
	userPaused      bool
	inCorrection    bool
	done            bool
	deviations      int
	correctionStart time.Time
	totalCorrection time.Duration
	now             func() time.Time
}

func newMeditationLoop(deps Deps, base *pose.Baseline) *meditationLoop {
	e := deps.Engine
	return &meditationLoop{
		src:       deps.Pose,
		cues:      deps.Cues,
		log:       deps.Log,
		base:      base,
		threshold: e.DeviationThreshold,
		minConf:   e.MinConfidence,
		target:    e.MeditationTarget(),
		grace:     e.Grace(),
		clock:     timer.NewPausableClock(),
		finished:  make(chan struct{}),
		now:       time.Now,
	}
}

func (l *meditationLoop) start(tickEvery, watchEvery time.Duration) {
	l.clock.Start()
	l.mu.Lock()
	l.tick = timer.NewRepeating(tickEvery, l.onClockTick)
	l.watchdog = timer.NewRepeating(watchEvery, l.onWatchdog)
	l.mu.Unlock()
}

// onClockTick resolves the loop once effective elapsed time reaches the
// target. While the clock is paused elapsed is frozen, so a correction
// episode can never complete the sit.
func (l *meditationLoop) onClockTick() {
	l.mu.Lock()
	if l.done || l.clock.Elapsed() < l.target {
		l.mu.Unlock()
		return
	}
	l.done = true
	l.stopLocked()
	l.mu.Unlock()
	close(l.finished)
}

// onWatchdog compares the live posture metric against the baseline and
// manages the grace window and correction episodes.
func (l *meditationLoop) onWatchdog() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done || l.userPaused {
		return
	}

	s := l.src.Current()
	if s == nil {
		return
	}
	dev, err := pose.DeviationFraction(l.base, s, l.minConf)
	if err != nil {
		l.log.Debug("watchdog sample not evaluable", "error", err)
		return
	}

	if dev > l.threshold {
		if l.inCorrection || l.graceTimer != nil {
			return
		}
		l.log.Info("posture deviation detected, grace window open", "deviation", dev)
		l.graceTimer = time.AfterFunc(l.grace, l.onGraceExpired)
		return
	}

	// Back within tolerance: disarm a pending grace window, or end an
	// active correction episode immediately.
	if l.graceTimer != nil {
		l.graceTimer.Stop()
		l.graceTimer = nil
	}
	if l.inCorrection {
		l.exitCorrectionLocked()
	}
}

// onGraceExpired enters a correction episode if the deviation persisted
// through the whole grace window.
func (l *meditationLoop) onGraceExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graceTimer = nil
	if l.done || l.userPaused || l.inCorrection {
		return
	}

	s := l.src.Current()
	if s == nil {
		return
	}
	dev, err := pose.DeviationFraction(l.base, s, l.minConf)
	if err != nil || dev <= l.threshold {
		return
	}

	l.inCorrection = true
	l.deviations++
	l.correctionStart = l.now()
	l.clock.Pause()
	l.cues.Loop(cue.CueCorrectionLoop)
	l.log.Info("correction episode started", "deviation", dev, "count", l.deviations)
}

// exitCorrectionLocked resumes the clock before anything else so the next
// clock tick cannot double-count the paused interval. A zero correctionStart
// means the episode's accrual was already folded in by pause.
func (l *meditationLoop) exitCorrectionLocked() {
	l.clock.Resume()
	if !l.correctionStart.IsZero() {
		l.totalCorrection += l.now().Sub(l.correctionStart)
		l.correctionStart = time.Time{}
	}
	l.inCorrection = false
	l.cues.StopLoop()
	l.log.Info("correction episode ended", "total_correction", l.totalCorrection)
}

// pause suspends the clock for a user-initiated pause. During a correction
// episode the clock is already paused, so the accrued correction time is
// folded in and accrual freezes until resume.
func (l *meditationLoop) pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done || l.userPaused {
		return
	}
	l.userPaused = true
	if l.inCorrection {
		l.totalCorrection += l.now().Sub(l.correctionStart)
		l.correctionStart = time.Time{}
	} else {
		l.clock.Pause()
	}
}

func (l *meditationLoop) resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.userPaused {
		return
	}
	l.userPaused = false
	if l.inCorrection {
		l.correctionStart = l.now()
	} else {
		l.clock.Resume()
	}
}

// stopLocked cancels every timer the loop owns. Ends an active correction
// episode first so its time is folded into the totals.
func (l *meditationLoop) stopLocked() {
	if l.inCorrection {
		l.exitCorrectionLocked()
	}
	if l.graceTimer != nil {
		l.graceTimer.Stop()
		l.graceTimer = nil
	}
	if l.tick != nil {
		l.tick.Stop()
	}
	if l.watchdog != nil {
		l.watchdog.Stop()
	}
}

// shutdown is the idempotent teardown used on stop, error and cleanup.
func (l *meditationLoop) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = true
	l.stopLocked()
}

// totals returns the deviation count and total correction time, including
// an episode still in progress (unless its accrual is frozen by pause).
func (l *meditationLoop) totals() (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := l.totalCorrection
	if l.inCorrection && !l.correctionStart.IsZero() {
		total += l.now().Sub(l.correctionStart)
	}
	return l.deviations, total
}
