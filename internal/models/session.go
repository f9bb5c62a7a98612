// Package models holds the persisted data shapes shared by storage, the
// HTTP surface, and the assistant tools.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

// SessionRow is one finished session as stored in the sessions table.
type SessionRow struct {
	ID                uuid.UUID  `json:"id"`
	Program           program.ID `json:"program"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           time.Time  `json:"ended_at"`
	Completed         bool       `json:"completed"`
	Error             *string    `json:"error,omitempty"`
	CompletedReps     int        `json:"completed_reps"`
	TotalHoldMs       int64      `json:"total_hold_ms"`
	Deviations        int        `json:"deviations"`
	TotalCorrectionMs int64      `json:"total_correction_ms"`
}

// FromResult builds a row from a program result. runErr is the error the
// session ended with, nil for a clean finish; it becomes the row's error
// marker so history can tell an abandoned session from a failed one.
func FromResult(id uuid.UUID, res *program.Result, runErr error) SessionRow {
	var errMarker *string
	if runErr != nil {
		msg := runErr.Error()
		errMarker = &msg
	}
	return SessionRow{
		ID:                id,
		Program:           res.Program,
		Error:             errMarker,
		StartedAt:         res.StartedAt,
		EndedAt:           res.EndedAt,
		Completed:         res.Completed,
		CompletedReps:     res.CompletedReps,
		TotalHoldMs:       res.TotalHold.Milliseconds(),
		Deviations:        res.Deviations,
		TotalCorrectionMs: res.TotalCorrection.Milliseconds(),
	}
}

// SessionStats aggregates history for the stats endpoint and the
// assistant tools.
type SessionStats struct {
	TotalSessions     int64      `json:"total_sessions"`
	CompletedSessions int64      `json:"completed_sessions"`
	TotalReps         int64      `json:"total_reps"`
	TotalHoldMs       int64      `json:"total_hold_ms"`
	TotalDeviations   int64      `json:"total_deviations"`
	TotalCorrectionMs int64      `json:"total_correction_ms"`
	EarliestSession   *time.Time `json:"earliest_session,omitempty"`
	LatestSession     *time.Time `json:"latest_session,omitempty"`

	ByProgram []ProgramStat `json:"by_program"`
}

// ProgramStat is per-program session counts.
type ProgramStat struct {
	Program   program.ID `json:"program"`
	Count     int64      `json:"count"`
	Completed int64      `json:"completed"`
}

// TrendPoint is one day of posture history for the trends view: how often
// the user sat, and how much of the meditation time went to corrections.
type TrendPoint struct {
	Day               string  `json:"day"`
	Sessions          int64   `json:"sessions"`
	Deviations        int64   `json:"deviations"`
	TotalCorrectionMs int64   `json:"total_correction_ms"`
	CompletionRate    float64 `json:"completion_rate"`
}
