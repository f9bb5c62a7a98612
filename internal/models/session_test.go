package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

// TestFromResult maps a program result onto a row, keeping the error
// marker for a failed session and leaving it nil for a clean one.
func TestFromResult(t *testing.T) {
	id := uuid.New()
	res := &program.Result{
		Program:         program.BreathingHold,
		StartedAt:       time.Now(),
		EndedAt:         time.Now(),
		Completed:       true,
		Deviations:      3,
		TotalCorrection: 8 * time.Second,
	}

	row := FromResult(id, res, nil)
	if row.ID != id || row.Program != program.BreathingHold {
		t.Errorf("row identity = %s/%s, want %s/breathing_hold", row.ID, row.Program, id)
	}
	if row.Error != nil {
		t.Errorf("Error = %q, want nil for a clean session", *row.Error)
	}
	if row.TotalCorrectionMs != 8000 {
		t.Errorf("TotalCorrectionMs = %d, want 8000", row.TotalCorrectionMs)
	}

	failed := &program.Result{Program: program.LateralTurn, CompletedReps: 2}
	row = FromResult(id, failed, errors.New("pose stream lost"))
	if row.Error == nil {
		t.Fatal("Error = nil for a failed session, want an error marker")
	}
	if *row.Error != "pose stream lost" {
		t.Errorf("Error = %q, want \"pose stream lost\"", *row.Error)
	}
	if row.Completed {
		t.Error("failed session marked completed")
	}
}
