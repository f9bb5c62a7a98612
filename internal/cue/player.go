// Package cue defines the audio-instruction contract the exercise engine
// drives. Actual decoding and playback happen in the capture client; the
// engine only sequences cues and paces itself on their known durations.
package cue

import "context"

// ID names one audio cue in the catalog.
type ID string

const (
	CueCalibration ID = "calibration_hold_still"
	CueConfirm     ID = "confirm_chime"
	CueComplete    ID = "session_complete"

	CueTurnIntro       ID = "turn_intro"
	CueTurnLeft        ID = "turn_left"
	CueTurnRight       ID = "turn_right"
	CueTurnOrientLeft  ID = "turn_orient_left"
	CueTurnOrientRight ID = "turn_orient_right"

	CueTiltIntro      ID = "tilt_intro"
	CueTiltUp         ID = "tilt_up"
	CueTiltDown       ID = "tilt_down"
	CueTiltOrientUp   ID = "tilt_orient_up"
	CueTiltOrientDown ID = "tilt_orient_down"

	CueMeditationIntro    ID = "meditation_intro"
	CueMeditationComplete ID = "meditation_complete"
	CueCorrectionLoop     ID = "correction_loop"
)

// Player sequences audio cues for a session.
type Player interface {
	// Ready reports whether something is listening for cue commands.
	Ready() bool
	// Play starts the cue and returns when playback ends or ctx is
	// cancelled.
	Play(ctx context.Context, id ID) error
	// Loop starts repeating the cue until StopLoop.
	Loop(id ID)
	// StopLoop stops a running loop; harmless when none is running.
	StopLoop()
	// PauseAll / ResumeAll / StopAll act on all audio activity.
	PauseAll()
	ResumeAll()
	StopAll()
}
