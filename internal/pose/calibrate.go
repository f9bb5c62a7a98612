package pose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrCalibrationFailed is returned when no sample of sufficient confidence
// arrives within the calibration window. It is fatal to the session.
var ErrCalibrationFailed = errors.New("calibration failed")

// Calibrator captures the immutable baseline a session measures against.
type Calibrator struct {
	src      Source
	interval time.Duration
	minConf  float64
	log      *slog.Logger
	now      func() time.Time
}

// NewCalibrator creates a calibrator sampling src at the given cadence.
func NewCalibrator(src Source, interval time.Duration, minConf float64, log *slog.Logger) *Calibrator {
	return &Calibrator{src: src, interval: interval, minConf: minConf, log: log, now: time.Now}
}

// CapturePaired settles for the given delay, then takes a single left/right
// reference-distance reading within window.
func (c *Calibrator) CapturePaired(ctx context.Context, settle, window time.Duration) (*Baseline, error) {
	if err := sleepCtx(ctx, settle); err != nil {
		return nil, err
	}
	var base *Baseline
	err := c.sampleUntil(ctx, window, func(s *Sample) bool {
		left, err := EarShoulderDistance(s, DirLeft, c.minConf)
		if err != nil {
			return false
		}
		right, err := EarShoulderDistance(s, DirRight, c.minConf)
		if err != nil || right == 0 {
			return false
		}
		base = &Baseline{
			Kind:       BaselinePaired,
			Left:       left,
			Right:      right,
			Confidence: s.partConfidence(PartLeftEar, PartLeftShoulder, PartRightEar, PartRightShoulder),
			CapturedAt: c.now(),
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("baseline captured", "kind", base.Kind, "ratio", base.Ratio(), "confidence", base.Confidence)
	return base, nil
}

// CaptureScalar settles for the given delay, then takes a single
// nose-shoulder distance reading within window.
func (c *Calibrator) CaptureScalar(ctx context.Context, settle, window time.Duration) (*Baseline, error) {
	if err := sleepCtx(ctx, settle); err != nil {
		return nil, err
	}
	var base *Baseline
	err := c.sampleUntil(ctx, window, func(s *Sample) bool {
		d, err := NoseShoulderDistance(s, c.minConf)
		if err != nil || d == 0 {
			return false
		}
		base = &Baseline{
			Kind:       BaselineScalar,
			Value:      d,
			Confidence: s.partConfidence(PartNose, PartLeftShoulder, PartRightShoulder),
			CapturedAt: c.now(),
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("baseline captured", "kind", base.Kind, "value", base.Value, "confidence", base.Confidence)
	return base, nil
}

// CaptureAveraged collects scalar readings across the whole window and
// returns their mean with a summary confidence. Used by the meditation
// program, where a single snapshot is too noisy to anchor a 5% tolerance.
func (c *Calibrator) CaptureAveraged(ctx context.Context, window time.Duration) (*Baseline, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	var values, confs []float64
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			if len(values) == 0 {
				return nil, fmt.Errorf("%w: no usable sample in %v window", ErrCalibrationFailed, window)
			}
			base := &Baseline{
				Kind:       BaselineScalar,
				Value:      mean(values),
				Confidence: mean(confs),
				CapturedAt: c.now(),
			}
			c.log.Info("baseline captured", "kind", base.Kind, "value", base.Value,
				"samples", len(values), "confidence", base.Confidence)
			return base, nil
		case <-ticker.C:
			s := c.src.Current()
			if s == nil {
				continue
			}
			d, err := NoseShoulderDistance(s, c.minConf)
			if err != nil || d == 0 {
				continue
			}
			values = append(values, d)
			confs = append(confs, s.partConfidence(PartNose, PartLeftShoulder, PartRightShoulder))
		}
	}
}

// sampleUntil polls until accept returns true or the window runs out.
func (c *Calibrator) sampleUntil(ctx context.Context, window time.Duration, accept func(*Sample) bool) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: no usable sample in %v window", ErrCalibrationFailed, window)
		case <-ticker.C:
			s := c.src.Current()
			if s == nil {
				continue
			}
			if accept(s) {
				return nil
			}
		}
	}
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
