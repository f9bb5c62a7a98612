// Package pose holds the pose domain: landmark samples streamed in by the
// capture client, the calibration baseline, the metric comparators, and the
// sustained-hold gate that decides when a pose counts as held.
package pose

import (
	"fmt"
	"time"
)

// Part identifies a tracked body landmark. Names match the wire format the
// capture client posts.
type Part string

const (
	PartNose          Part = "nose"
	PartLeftEar       Part = "left_ear"
	PartRightEar      Part = "right_ear"
	PartLeftShoulder  Part = "left_shoulder"
	PartRightShoulder Part = "right_shoulder"
)

// Point is a normalized landmark position (0..1 in frame coordinates).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one pose reading: per-part positions with per-part confidence.
// Samples are ephemeral; nothing in the engine retains them past the tick
// that consumed them.
type Sample struct {
	Time       time.Time
	Points     map[Part]Point
	Confidence map[Part]float64
}

// point returns the position for a part if it was detected with at least
// minConf confidence.
func (s *Sample) point(p Part, minConf float64) (Point, bool) {
	pt, ok := s.Points[p]
	if !ok {
		return Point{}, false
	}
	if s.Confidence[p] < minConf {
		return Point{}, false
	}
	return pt, true
}

// partConfidence returns the mean confidence across the given parts.
func (s *Sample) partConfidence(parts ...Part) float64 {
	if len(parts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range parts {
		sum += s.Confidence[p]
	}
	return sum / float64(len(parts))
}

// Frame is the wire shape posted by the capture client for one pose
// reading.
type Frame struct {
	Landmarks map[string]FrameLandmark `json:"landmarks"`
}

// FrameLandmark is one landmark in a posted frame.
type FrameLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Sample converts a frame into an engine sample stamped at t.
func (f *Frame) Sample(t time.Time) (*Sample, error) {
	if len(f.Landmarks) == 0 {
		return nil, fmt.Errorf("frame has no landmarks")
	}
	s := &Sample{
		Time:       t,
		Points:     make(map[Part]Point, len(f.Landmarks)),
		Confidence: make(map[Part]float64, len(f.Landmarks)),
	}
	for name, lm := range f.Landmarks {
		p := Part(name)
		s.Points[p] = Point{X: lm.X, Y: lm.Y}
		s.Confidence[p] = lm.Confidence
	}
	return s, nil
}
