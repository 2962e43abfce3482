package player

import "github.com/stillpoint/stillpoint/internal/library"

// Player defines the interface to an external audio playback process.
// All operations degrade to safe no-ops on communication failure; none of
// them propagate transport errors to the caller.
type Player interface {
	// Play starts playback of the given track, stopping any active
	// playback first. A missing file is a no-op.
	Play(track library.Track) error

	// Pause pauses playback. No-op if nothing is playing.
	Pause()

	// Resume resumes paused playback. No-op if nothing is paused.
	Resume()

	// Stop terminates the playback process and returns the last computed
	// progress fraction. Safe to call when idle (returns 0).
	Stop() float64

	// IsPlaying reports whether a live playback process is playing
	IsPlaying() bool

	// IsPaused reports whether a live playback process is paused
	IsPaused() bool

	// Alive reports whether the playback process from the last Play is
	// still running. Used to detect natural end-of-stream.
	Alive() bool

	// Progress queries the current position/duration and returns the
	// normalized fraction in [0,1], or 0 on any failure.
	Progress() float64

	// TrackName returns the display name of the last successfully played
	// track, or "" if none.
	TrackName() string
}
