package pose

import (
	"context"
	"log/slog"
	"time"
)

// Gate is the sustained-compliance detector. It samples a predicate at a
// fixed cadence and resolves only after an unbroken hold window.
type Gate struct {
	src      Source
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewGate creates a gate sampling src at the given cadence. The cadence is
// fixed and independent of the capture client's true frame rate.
func NewGate(src Source, interval time.Duration, log *slog.Logger) *Gate {
	return &Gate{src: src, interval: interval, log: log, now: time.Now}
}

// Watch blocks until pred has been satisfied on every sample for an
// unbroken stretch of hold, then returns the time from the start of that
// stretch to confirmation. Any failing sample — a predicate returning
// false, a sample that cannot be evaluated, or no pose data at all —
// resets the accumulator to zero; there is no partial credit. Cancelling
// ctx abandons the watch.
func (g *Gate) Watch(ctx context.Context, pred Predicate, hold time.Duration) (time.Duration, error) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	var since time.Time // start of the current satisfying stretch
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
			ok := false
			if s := g.src.Current(); s != nil {
				v, err := pred(s)
				if err != nil {
					// One bad sample must not kill the loop.
					g.log.Debug("pose sample not evaluable", "error", err)
				} else {
					ok = v
				}
			}

			if !ok {
				since = time.Time{}
				continue
			}

			now := g.now()
			if since.IsZero() {
				since = now
			}
			if held := now.Sub(since); held >= hold {
				return held, nil
			}
		}
	}
}
