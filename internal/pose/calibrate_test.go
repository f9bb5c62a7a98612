package pose

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// TestCapturePaired verifies a single-snapshot paired baseline carries the
// live reference distances.
func TestCapturePaired(t *testing.T) {
	src := &fakeSource{}
	src.set(sampleWithDistances(0.3, 0.2))
	c := NewCalibrator(src, 2*time.Millisecond, 0.5, testLogger())

	base, err := c.CapturePaired(context.Background(), 0, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("CapturePaired() error = %v", err)
	}
	if base.Kind != BaselinePaired {
		t.Errorf("kind = %s, want %s", base.Kind, BaselinePaired)
	}
	if math.Abs(base.Ratio()-1.5) > 1e-9 {
		t.Errorf("Ratio() = %v, want 1.5", base.Ratio())
	}
	if base.Confidence == 0 {
		t.Error("confidence not recorded")
	}
}

// TestCaptureScalar verifies the snapshot scalar baseline.
func TestCaptureScalar(t *testing.T) {
	src := &fakeSource{}
	src.set(sampleWithNoseDistance(0.25))
	c := NewCalibrator(src, 2*time.Millisecond, 0.5, testLogger())

	base, err := c.CaptureScalar(context.Background(), 0, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("CaptureScalar() error = %v", err)
	}
	if base.Kind != BaselineScalar {
		t.Errorf("kind = %s, want %s", base.Kind, BaselineScalar)
	}
	if math.Abs(base.Value-0.25) > 1e-9 {
		t.Errorf("value = %v, want 0.25", base.Value)
	}
}

// TestCaptureFailsWithoutConfidentSamples verifies the calibration error
// when nothing in the window clears the confidence floor.
func TestCaptureFailsWithoutConfidentSamples(t *testing.T) {
	low := sampleWithNoseDistance(0.25)
	for p := range low.Confidence {
		low.Confidence[p] = 0.1
	}
	src := &fakeSource{}
	src.set(low)
	c := NewCalibrator(src, 2*time.Millisecond, 0.5, testLogger())

	if _, err := c.CaptureScalar(context.Background(), 0, 30*time.Millisecond); !errors.Is(err, ErrCalibrationFailed) {
		t.Errorf("CaptureScalar() error = %v, want ErrCalibrationFailed", err)
	}
	if _, err := c.CaptureAveraged(context.Background(), 30*time.Millisecond); !errors.Is(err, ErrCalibrationFailed) {
		t.Errorf("CaptureAveraged() error = %v, want ErrCalibrationFailed", err)
	}
}

// TestCaptureAveraged verifies the averaged baseline is the mean of the
// samples seen across the window.
func TestCaptureAveraged(t *testing.T) {
	src := &fakeSource{}
	src.set(sampleWithNoseDistance(0.2))
	c := NewCalibrator(src, 2*time.Millisecond, 0.5, testLogger())

	// Switch the live reading halfway through the window.
	go func() {
		time.Sleep(25 * time.Millisecond)
		src.set(sampleWithNoseDistance(0.4))
	}()

	base, err := c.CaptureAveraged(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("CaptureAveraged() error = %v", err)
	}
	if base.Value <= 0.2 || base.Value >= 0.4 {
		t.Errorf("averaged value = %v, want strictly between 0.2 and 0.4", base.Value)
	}
}

// TestCaptureAbandonedOnCancel verifies calibration honors ctx.
func TestCaptureAbandonedOnCancel(t *testing.T) {
	src := &fakeSource{} // never produces a sample
	c := NewCalibrator(src, 2*time.Millisecond, 0.5, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CapturePaired(ctx, 10*time.Millisecond, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("CapturePaired() error = %v, want context.Canceled", err)
	}
}
