package selection

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/stillpoint/stillpoint/internal/library"
)

// Selector chooses which track plays next while discouraging short-term
// repeats. It owns the current selection, the in-memory session history
// used for back-navigation, and the persisted recency window.
//
// Selector is not safe for concurrent use; callers serialize access (the
// playback machine holds its transition lock across every call).
type Selector struct {
	tracks  []library.Track
	window  *Window
	history []library.Track
	cursor  int
	rng     *rand.Rand
	logger  zerolog.Logger
}

// New creates a Selector over the discovered track set
func New(tracks []library.Track, window *Window, logger zerolog.Logger) *Selector {
	return &Selector{
		tracks: tracks,
		window: window,
		cursor: -1,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.With().Str("component", "selection").Logger(),
	}
}

// InitializeSession draws the first selection of the session and seeds the
// session history with it. The initial selection does not count toward
// recency until actually listened to, so RecordPlayed is not called.
func (s *Selector) InitializeSession() library.Track {
	t := s.SelectRandom()
	if t.IsZero() {
		return t
	}
	s.history = []library.Track{t}
	s.cursor = 0
	return t
}

// InitializeSessionWith seeds the session history with a specific track,
// used when restoring a previous session. Falls back to a random initial
// selection if the track is not in the set.
func (s *Selector) InitializeSessionWith(filename string) library.Track {
	for _, t := range s.tracks {
		if t.Name == filename {
			s.history = []library.Track{t}
			s.cursor = 0
			return t
		}
	}
	return s.InitializeSession()
}

// Current returns the currently selected track, or the zero Track when the
// set is empty
func (s *Selector) Current() library.Track {
	if s.cursor < 0 || s.cursor >= len(s.history) {
		return library.Track{}
	}
	return s.history[s.cursor]
}

// SelectRandom draws uniformly from the track set excluding recently
// played filenames. When the exclusion leaves no candidates the draw falls
// back to the entire set: a non-empty set always yields a selection.
func (s *Selector) SelectRandom() library.Track {
	if len(s.tracks) == 0 {
		return library.Track{}
	}

	var candidates []library.Track
	for _, t := range s.tracks {
		if !s.window.Contains(t.Name) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = s.tracks
	}

	return candidates[s.rng.Intn(len(candidates))]
}

// NextRandomFile selects a new random track, appends it to the session
// history, and moves the cursor to it. Recency recording is the caller's
// responsibility, gated by listening progress.
func (s *Selector) NextRandomFile() library.Track {
	t := s.SelectRandom()
	if t.IsZero() {
		return t
	}
	s.history = append(s.history, t)
	s.cursor = len(s.history) - 1
	return t
}

// PreviousFile moves the cursor back one entry in the session history and
// returns that track. Returns the zero Track when already at the first
// entry or the history is empty. Entries are never removed, so repeated
// back navigation within a session always works.
func (s *Selector) PreviousFile() library.Track {
	if s.cursor <= 0 {
		return library.Track{}
	}
	s.cursor--
	return s.history[s.cursor]
}

// RecordPlayed adds the track to the persisted recency window
func (s *Selector) RecordPlayed(t library.Track) {
	if t.IsZero() {
		return
	}
	s.window.Record(t.Name)
	s.logger.Debug().Str("track", t.Name).Msg("Recorded in recency window")
}

// Empty reports whether the underlying track set is empty
func (s *Selector) Empty() bool {
	return len(s.tracks) == 0
}
