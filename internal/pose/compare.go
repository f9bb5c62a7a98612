package pose

import (
	"fmt"
	"math"
)

// Direction is the side of a baseline a comparator looks for.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
)

// Predicate evaluates one sample against a target. A returned error means
// the sample could not be evaluated (missing or low-confidence landmarks);
// the gate treats that as a failing sample.
type Predicate func(*Sample) (bool, error)

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EarShoulderDistance returns the ear-to-shoulder reference distance for
// one side of the body.
func EarShoulderDistance(s *Sample, dir Direction, minConf float64) (float64, error) {
	ear, shoulder := PartLeftEar, PartLeftShoulder
	if dir == DirRight {
		ear, shoulder = PartRightEar, PartRightShoulder
	}
	e, ok := s.point(ear, minConf)
	if !ok {
		return 0, fmt.Errorf("landmark %s missing or below confidence %.2f", ear, minConf)
	}
	sh, ok := s.point(shoulder, minConf)
	if !ok {
		return 0, fmt.Errorf("landmark %s missing or below confidence %.2f", shoulder, minConf)
	}
	return distance(e, sh), nil
}

// TurnRatio returns the live left/right reference-distance ratio. Turning
// the head left foreshortens the right side, raising the ratio.
func TurnRatio(s *Sample, minConf float64) (float64, error) {
	left, err := EarShoulderDistance(s, DirLeft, minConf)
	if err != nil {
		return 0, err
	}
	right, err := EarShoulderDistance(s, DirRight, minConf)
	if err != nil {
		return 0, err
	}
	if right == 0 {
		return 0, fmt.Errorf("right reference distance is zero")
	}
	return left / right, nil
}

// NoseShoulderDistance returns the distance from the nose to the midpoint
// between the shoulders. It shrinks when the head tilts down or the torso
// slouches forward, and grows when the head tilts up.
func NoseShoulderDistance(s *Sample, minConf float64) (float64, error) {
	nose, ok := s.point(PartNose, minConf)
	if !ok {
		return 0, fmt.Errorf("landmark %s missing or below confidence %.2f", PartNose, minConf)
	}
	ls, ok := s.point(PartLeftShoulder, minConf)
	if !ok {
		return 0, fmt.Errorf("landmark %s missing or below confidence %.2f", PartLeftShoulder, minConf)
	}
	rs, ok := s.point(PartRightShoulder, minConf)
	if !ok {
		return 0, fmt.Errorf("landmark %s missing or below confidence %.2f", PartRightShoulder, minConf)
	}
	mid := Point{X: (ls.X + rs.X) / 2, Y: (ls.Y + rs.Y) / 2}
	return distance(nose, mid), nil
}

// TurnPredicate builds a comparator for a lateral head turn. A relative
// ratio change of at least threshold confirms the turn; the sign picks the
// side (left raises the ratio, right lowers it).
func TurnPredicate(base *Baseline, dir Direction, threshold, minConf float64) (Predicate, error) {
	if base.Kind != BaselinePaired {
		return nil, fmt.Errorf("turn comparator needs a paired baseline, got %s", base.Kind)
	}
	ref := base.Ratio()
	if ref == 0 {
		return nil, fmt.Errorf("baseline ratio is zero")
	}
	if dir != DirLeft && dir != DirRight {
		return nil, fmt.Errorf("turn direction must be left or right, got %s", dir)
	}
	return func(s *Sample) (bool, error) {
		live, err := TurnRatio(s, minConf)
		if err != nil {
			return false, err
		}
		change := (live - ref) / ref
		if dir == DirLeft {
			return change >= threshold, nil
		}
		return change <= -threshold, nil
	}, nil
}

// TiltPredicate builds a comparator for a vertical head tilt. A relative
// distance change of at least threshold confirms the tilt; up grows the
// nose-shoulder distance, down shrinks it.
func TiltPredicate(base *Baseline, dir Direction, threshold, minConf float64) (Predicate, error) {
	if base.Kind != BaselineScalar {
		return nil, fmt.Errorf("tilt comparator needs a scalar baseline, got %s", base.Kind)
	}
	if base.Value == 0 {
		return nil, fmt.Errorf("baseline distance is zero")
	}
	if dir != DirUp && dir != DirDown {
		return nil, fmt.Errorf("tilt direction must be up or down, got %s", dir)
	}
	return func(s *Sample) (bool, error) {
		live, err := NoseShoulderDistance(s, minConf)
		if err != nil {
			return false, err
		}
		change := (live - base.Value) / base.Value
		if dir == DirUp {
			return change >= threshold, nil
		}
		return change <= -threshold, nil
	}, nil
}

// DeviationFraction returns |live − baseline| / baseline for the scalar
// posture metric, used by the meditation watchdog.
func DeviationFraction(base *Baseline, s *Sample, minConf float64) (float64, error) {
	if base.Kind != BaselineScalar {
		return 0, fmt.Errorf("deviation needs a scalar baseline, got %s", base.Kind)
	}
	if base.Value == 0 {
		return 0, fmt.Errorf("baseline distance is zero")
	}
	live, err := NoseShoulderDistance(s, minConf)
	if err != nil {
		return 0, err
	}
	return math.Abs(live-base.Value) / base.Value, nil
}
