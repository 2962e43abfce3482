package playback

import (
	"context"
	"time"
)

// watch is the per-play completion watcher. It polls the player at the
// configured interval, marks the listened threshold once per play, and
// detects the subprocess exiting on its own, which is a natural completion
// rather than a user-initiated stop.
//
// gen is the playback generation this watcher belongs to; events observed
// after the machine has moved on to a newer generation are discarded.
func (m *Machine) watch(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := m.tick(gen); done {
				return
			}
		}
	}
}

// tick performs one watcher check. Returns true when the watcher should
// exit: the generation is stale, playback stopped, or the track completed.
func (m *Machine) tick(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		return true
	}
	if m.state == StateStopped {
		return true
	}

	if !m.player.Alive() {
		m.completeLocked()
		return true
	}

	if m.state != StatePlaying {
		// Paused: position cannot advance, skip the query
		return false
	}

	progress := m.player.Progress()
	if progress > m.lastProgress {
		m.lastProgress = progress
	}

	if !m.listenedFired && MeaningfullyListened(m.lastProgress) {
		m.listenedFired = true
		t := m.selector.Current()
		if err := m.store.MarkListened(context.Background(), t.Name); err != nil {
			m.logger.Warn().Err(err).Str("track", t.Name).Msg("Failed to mark play as listened")
		}
	}

	return false
}

// completeLocked handles natural end-of-stream: the final progress is the
// last value captured before the subprocess exited, not re-queried after
// teardown. Applies the same completion rule as a user-initiated Stop.
// Caller holds m.mu.
func (m *Machine) completeLocked() {
	final := m.lastProgress
	t := m.selector.Current()

	m.cancelWatchLocked()
	m.player.Stop()
	m.finishLocked(t, final)
	m.state = StateStopped

	m.logger.Info().
		Str("track", t.Name).
		Float64("progress", final).
		Msg("Track completed naturally")
}
