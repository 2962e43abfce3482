package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stillpoint/stillpoint/internal/library"
	"github.com/stillpoint/stillpoint/internal/player"
	"github.com/stillpoint/stillpoint/internal/selection"
)

// State is the playback state of the machine
type State int

const (
	StateStopped State = iota // No track playing
	StatePlaying              // Track is currently playing
	StatePaused               // Track is paused
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// HistoryStore records play starts, listened marks, and completions.
// Implementations may fail; the machine downgrades every store error to a
// logged warning so a broken store never blocks playback.
type HistoryStore interface {
	RecordStart(ctx context.Context, filename string, duration time.Duration) (int64, error)
	MarkListened(ctx context.Context, filename string) error
	RecordCompletion(ctx context.Context, filename string) error
}

// DefaultPollInterval is how often the completion watcher checks the
// player for liveness and progress
const DefaultPollInterval = 400 * time.Millisecond

// Config holds machine tunables
type Config struct {
	PollInterval time.Duration
}

// Machine is the playback state machine. It owns the transition table for
// play/pause/stop/next/previous, the watcher goroutine that detects
// natural completion, and the bookkeeping that follows each transition.
//
// All transitions are serialized behind a single mutex, so a key press
// racing a watcher-detected completion can never fire teardown twice for
// the same playback generation.
type Machine struct {
	cfg      Config
	player   player.Player
	selector *selection.Selector
	store    HistoryStore
	logger   zerolog.Logger

	mu            sync.Mutex
	state         State
	generation    uint64
	cancelWatch   context.CancelFunc
	listenedFired bool
	lastProgress  float64
}

// New creates a Machine in the stopped state
func New(cfg Config, p player.Player, sel *selection.Selector, store HistoryStore, logger zerolog.Logger) *Machine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Machine{
		cfg:      cfg,
		player:   p,
		selector: sel,
		store:    store,
		logger:   logger.With().Str("component", "playback").Logger(),
	}
}

// Play transitions Stopped or Paused to Playing. From Stopped it resolves
// the current selection (drawing the initial one if needed) and starts the
// player; from Paused it resumes, or starts fresh if the paused subprocess
// is gone (e.g. the selection changed while paused).
func (m *Machine) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StatePlaying:
		return
	case StatePaused:
		if m.player.IsPaused() {
			m.player.Resume()
			m.state = StatePlaying
			m.recordStartLocked(m.selector.Current())
			return
		}
		// Paused but no live subprocess: start the selection fresh
		m.startLocked(m.selector.Current())
	case StateStopped:
		t := m.selector.Current()
		if t.IsZero() {
			t = m.selector.InitializeSession()
		}
		m.startLocked(t)
	}
}

// Pause transitions Playing to Paused
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying {
		return
	}
	m.player.Pause()
	m.state = StatePaused
}

// Resume transitions Paused to Playing
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		return
	}
	m.player.Resume()
	m.state = StatePlaying
}

// Stop transitions Playing or Paused to Stopped, applying the completion
// rule to the track that was playing
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateStopped {
		return
	}

	m.cancelWatchLocked()
	progress := m.player.Stop()
	m.finishLocked(m.selector.Current(), progress)
	m.state = StateStopped
}

// Next advances the selection to a new random track. The track being left
// gets the same completion bookkeeping as an explicit Stop. Playback
// continues onto the new track only if the machine was Playing.
func (m *Machine) Next() {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasPlaying := m.state == StatePlaying

	if m.state != StateStopped {
		m.cancelWatchLocked()
		progress := m.player.Stop()
		m.finishLocked(m.selector.Current(), progress)
		m.lastProgress = 0
	}

	t := m.selector.NextRandomFile()
	if t.IsZero() {
		m.state = StateStopped
		return
	}

	if wasPlaying {
		m.startLocked(t)
	}
}

// Previous moves the selection back one entry in the session history. The
// track being left gets no recency bookkeeping. No-op when already at the
// first entry.
func (m *Machine) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.selector.PreviousFile()
	if t.IsZero() {
		return
	}

	wasPlaying := m.state == StatePlaying

	if m.state != StateStopped {
		m.cancelWatchLocked()
		m.player.Stop()
		m.lastProgress = 0
	}

	if wasPlaying {
		m.startLocked(t)
	}
}

// Toggle maps a single key to the natural transition for the current
// state: play when stopped, pause when playing, resume when paused.
func (m *Machine) Toggle() {
	switch m.State() {
	case StatePlaying:
		m.Pause()
	default:
		m.Play()
	}
}

// Shutdown issues a final Stop so no subprocess outlives the process
func (m *Machine) Shutdown() {
	m.Stop()
}

// State returns the current playback state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentTrack returns the currently selected track
func (m *Machine) CurrentTrack() library.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selector.Current()
}

// Progress returns the playback progress fraction for display. It is
// monotonically non-decreasing while playing and frozen while paused.
func (m *Machine) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateStopped:
		return 0
	case StatePaused:
		return m.lastProgress
	}

	if p := m.player.Progress(); p > m.lastProgress {
		m.lastProgress = p
	}
	return m.lastProgress
}

// startLocked starts playback of t: cancels any stale watcher, bumps the
// playback generation, commands the player, and spawns a fresh watcher.
// Caller holds m.mu.
func (m *Machine) startLocked(t library.Track) {
	if t.IsZero() {
		m.state = StateStopped
		return
	}

	m.cancelWatchLocked()
	m.generation++

	if err := m.player.Play(t); err != nil {
		m.logger.Warn().Err(err).Str("track", t.Name).Msg("Failed to start playback")
		m.state = StateStopped
		return
	}
	if !m.player.Alive() {
		// Missing file or immediate subprocess death
		m.logger.Warn().Str("track", t.Name).Msg("Playback did not start")
		m.state = StateStopped
		return
	}

	m.listenedFired = false
	m.lastProgress = 0
	m.state = StatePlaying

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelWatch = cancel
	go m.watch(ctx, m.generation)

	m.recordStartLocked(t)
}

// finishLocked applies end-of-play bookkeeping for track t with the given
// final progress: the recency window and history completion both key off
// the completion threshold. Caller holds m.mu.
func (m *Machine) finishLocked(t library.Track, progress float64) {
	if t.IsZero() {
		return
	}

	if !CountsAsCompleted(progress) {
		m.logger.Debug().
			Str("track", t.Name).
			Float64("progress", progress).
			Msg("Play left open, below completion threshold")
		return
	}

	m.selector.RecordPlayed(t)
	if err := m.store.RecordCompletion(context.Background(), t.Name); err != nil {
		m.logger.Warn().Err(err).Str("track", t.Name).Msg("Failed to record completion")
	}
}

// recordStartLocked records a play-history start entry. Store failures are
// logged and never abort the transition. Caller holds m.mu.
func (m *Machine) recordStartLocked(t library.Track) {
	if t.IsZero() {
		return
	}
	if _, err := m.store.RecordStart(context.Background(), t.Name, 0); err != nil {
		m.logger.Warn().Err(err).Str("track", t.Name).Msg("Failed to record play start")
	}
}

// cancelWatchLocked stops the active watcher, if any. Caller holds m.mu.
func (m *Machine) cancelWatchLocked() {
	if m.cancelWatch != nil {
		m.cancelWatch()
		m.cancelWatch = nil
	}
}
