package program

import (
	"fmt"
	"time"
)

// Result is what a program yields when its pipeline ends. Common fields
// are always set; the per-program counters depend on the program kind.
type Result struct {
	Program   ID        `json:"program"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Completed bool      `json:"completed"`

	// Repetition programs.
	CompletedReps int           `json:"completed_reps,omitempty"`
	TotalHold     time.Duration `json:"total_hold,omitempty"`

	// Meditation.
	Deviations      int           `json:"deviations,omitempty"`
	TotalCorrection time.Duration `json:"total_correction,omitempty"`
}

// HumanMessage renders a one-line summary suitable for the completion
// notification.
func (r *Result) HumanMessage() string {
	switch r.Program {
	case BreathingHold:
		if !r.Completed {
			return "Meditation ended early."
		}
		if r.Deviations == 0 {
			return "Meditation complete with perfect posture throughout."
		}
		return fmt.Sprintf("Meditation complete: %d posture correction(s), %s spent correcting.",
			r.Deviations, r.TotalCorrection.Round(time.Second))
	default:
		if !r.Completed {
			return fmt.Sprintf("Exercise ended early after %d repetition(s).", r.CompletedReps)
		}
		return fmt.Sprintf("Exercise complete: %d repetitions, %s of held poses.",
			r.CompletedReps, r.TotalHold.Round(time.Second))
	}
}
