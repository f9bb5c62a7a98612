package pose

import "time"

// BaselineKind distinguishes the two baseline shapes the programs capture.
type BaselineKind string

const (
	// BaselineScalar is a single reference distance (tilt, meditation).
	BaselineScalar BaselineKind = "scalar"
	// BaselinePaired is a left/right pair of reference distances (turn).
	BaselinePaired BaselineKind = "paired_distance"
)

// Baseline is the reference pose metric captured during calibration.
// It is immutable once captured and discarded when the session ends.
type Baseline struct {
	Kind       BaselineKind
	Value      float64 // scalar metric; unused for paired baselines
	Left       float64 // paired only
	Right      float64 // paired only
	Confidence float64
	CapturedAt time.Time
}

// Ratio returns the left/right reference ratio of a paired baseline.
func (b *Baseline) Ratio() float64 {
	if b.Right == 0 {
		return 0
	}
	return b.Left / b.Right
}
