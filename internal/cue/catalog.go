package cue

import "time"

// Clip describes one catalog entry: the audio asset the client should play
// and how long it runs. Play resolves after Duration, so the engine stays
// in step with playback without a completion callback from the client.
type Clip struct {
	Asset    string        `json:"asset"`
	Duration time.Duration `json:"duration"`
}

// Catalog maps cue ids to clips.
type Catalog map[ID]Clip

// DefaultCatalog returns the stock cue set shipped with the extension.
func DefaultCatalog() Catalog {
	return Catalog{
		CueCalibration: {Asset: "audio/calibration_hold_still.mp3", Duration: 4 * time.Second},
		CueConfirm:     {Asset: "audio/confirm_chime.mp3", Duration: 800 * time.Millisecond},
		CueComplete:    {Asset: "audio/session_complete.mp3", Duration: 5 * time.Second},

		CueTurnIntro:       {Asset: "audio/turn_intro.mp3", Duration: 9 * time.Second},
		CueTurnLeft:        {Asset: "audio/turn_left.mp3", Duration: 2 * time.Second},
		CueTurnRight:       {Asset: "audio/turn_right.mp3", Duration: 2 * time.Second},
		CueTurnOrientLeft:  {Asset: "audio/turn_orient_left.mp3", Duration: 5 * time.Second},
		CueTurnOrientRight: {Asset: "audio/turn_orient_right.mp3", Duration: 5 * time.Second},

		CueTiltIntro:      {Asset: "audio/tilt_intro.mp3", Duration: 9 * time.Second},
		CueTiltUp:         {Asset: "audio/tilt_up.mp3", Duration: 2 * time.Second},
		CueTiltDown:       {Asset: "audio/tilt_down.mp3", Duration: 2 * time.Second},
		CueTiltOrientUp:   {Asset: "audio/tilt_orient_up.mp3", Duration: 5 * time.Second},
		CueTiltOrientDown: {Asset: "audio/tilt_orient_down.mp3", Duration: 5 * time.Second},

		CueMeditationIntro:    {Asset: "audio/meditation_intro.mp3", Duration: 12 * time.Second},
		CueMeditationComplete: {Asset: "audio/meditation_complete.mp3", Duration: 6 * time.Second},
		CueCorrectionLoop:     {Asset: "audio/correction_loop.mp3", Duration: 3 * time.Second},
	}
}

// SilentCatalog returns a catalog with the same ids but zero durations,
// used in tests so cue playback never blocks.
func SilentCatalog() Catalog {
	c := DefaultCatalog()
	for id, clip := range c {
		clip.Duration = 0
		c[id] = clip
	}
	return c
}
