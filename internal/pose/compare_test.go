package pose

import (
	"math"
	"testing"
	"time"
)

// sampleWithDistances builds a sample whose left and right ear-shoulder
// distances are exactly the given values, with full confidence.
func sampleWithDistances(left, right float64) *Sample {
	return &Sample{
		Time: time.Now(),
		Points: map[Part]Point{
			PartLeftEar:       {X: 0, Y: 0},
			PartLeftShoulder:  {X: 0, Y: left},
			PartRightEar:      {X: 1, Y: 0},
			PartRightShoulder: {X: 1, Y: right},
		},
		Confidence: map[Part]float64{
			PartLeftEar: 0.9, PartLeftShoulder: 0.9,
			PartRightEar: 0.9, PartRightShoulder: 0.9,
		},
	}
}

// sampleWithNoseDistance builds a sample whose nose-to-shoulder-midpoint
// distance is exactly d, with full confidence.
func sampleWithNoseDistance(d float64) *Sample {
	return &Sample{
		Time: time.Now(),
		Points: map[Part]Point{
			PartNose:          {X: 0, Y: 0},
			PartLeftShoulder:  {X: -1, Y: d},
			PartRightShoulder: {X: 1, Y: d},
		},
		Confidence: map[Part]float64{
			PartNose: 0.9, PartLeftShoulder: 0.9, PartRightShoulder: 0.9,
		},
	}
}

// TestTurnPredicateDirections verifies the 15% relative-change rule: a 20%
// ratio increase confirms a left turn but not a right turn.
func TestTurnPredicateDirections(t *testing.T) {
	base := &Baseline{Kind: BaselinePaired, Left: 1.0, Right: 1.0}
	live := sampleWithDistances(0.12, 0.10) // ratio 1.20, +20% vs baseline 1.0

	left, err := TurnPredicate(base, DirLeft, 0.15, 0.5)
	if err != nil {
		t.Fatalf("TurnPredicate(left) error = %v", err)
	}
	right, err := TurnPredicate(base, DirRight, 0.15, 0.5)
	if err != nil {
		t.Fatalf("TurnPredicate(right) error = %v", err)
	}

	if ok, err := left(live); err != nil || !ok {
		t.Errorf("left predicate = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := right(live); err != nil || ok {
		t.Errorf("right predicate = (%v, %v), want (false, nil)", ok, err)
	}
}

// TestTurnPredicateBelowThreshold verifies a 10% change confirms neither
// direction at the 15% threshold.
func TestTurnPredicateBelowThreshold(t *testing.T) {
	base := &Baseline{Kind: BaselinePaired, Left: 1.0, Right: 1.0}
	live := sampleWithDistances(0.11, 0.10) // ratio 1.10

	for _, dir := range []Direction{DirLeft, DirRight} {
		pred, err := TurnPredicate(base, dir, 0.15, 0.5)
		if err != nil {
			t.Fatalf("TurnPredicate(%s) error = %v", dir, err)
		}
		if ok, _ := pred(live); ok {
			t.Errorf("%s predicate confirmed a 10%% change at 15%% threshold", dir)
		}
	}
}

// TestTiltPredicateDirections verifies the 0.5% rule: a 0.6% distance
// decrease confirms a down tilt but not an up tilt.
func TestTiltPredicateDirections(t *testing.T) {
	base := &Baseline{Kind: BaselineScalar, Value: 100}
	live := sampleWithNoseDistance(99.4) // −0.6%

	down, err := TiltPredicate(base, DirDown, 0.005, 0.5)
	if err != nil {
		t.Fatalf("TiltPredicate(down) error = %v", err)
	}
	up, err := TiltPredicate(base, DirUp, 0.005, 0.5)
	if err != nil {
		t.Fatalf("TiltPredicate(up) error = %v", err)
	}

	if ok, err := down(live); err != nil || !ok {
		t.Errorf("down predicate = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := up(live); err != nil || ok {
		t.Errorf("up predicate = (%v, %v), want (false, nil)", ok, err)
	}
}

// TestPredicateLowConfidence verifies that low-confidence landmarks make
// the sample unevaluable rather than silently false-or-true.
func TestPredicateLowConfidence(t *testing.T) {
	base := &Baseline{Kind: BaselinePaired, Left: 1.0, Right: 1.0}
	live := sampleWithDistances(0.12, 0.10)
	live.Confidence[PartLeftEar] = 0.1

	pred, err := TurnPredicate(base, DirLeft, 0.15, 0.5)
	if err != nil {
		t.Fatalf("TurnPredicate error = %v", err)
	}
	if _, err := pred(live); err == nil {
		t.Error("predicate accepted a sample with confidence below minimum")
	}
}

// TestDeviationFraction verifies the meditation deviation metric.
func TestDeviationFraction(t *testing.T) {
	base := &Baseline{Kind: BaselineScalar, Value: 50}

	dev, err := DeviationFraction(base, sampleWithNoseDistance(60), 0.5)
	if err != nil {
		t.Fatalf("DeviationFraction error = %v", err)
	}
	if math.Abs(dev-0.20) > 1e-9 {
		t.Errorf("deviation = %v, want 0.20", dev)
	}

	dev, err = DeviationFraction(base, sampleWithNoseDistance(50), 0.5)
	if err != nil {
		t.Fatalf("DeviationFraction error = %v", err)
	}
	if dev != 0 {
		t.Errorf("deviation at baseline = %v, want 0", dev)
	}
}

// TestTurnRatio verifies the raw ratio computation.
func TestTurnRatio(t *testing.T) {
	ratio, err := TurnRatio(sampleWithDistances(0.3, 0.2), 0.5)
	if err != nil {
		t.Fatalf("TurnRatio error = %v", err)
	}
	if math.Abs(ratio-1.5) > 1e-9 {
		t.Errorf("TurnRatio = %v, want 1.5", ratio)
	}
}
