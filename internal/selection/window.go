package selection

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindowSize is the number of recently played tracks remembered
// across process restarts
const DefaultWindowSize = 10

// Window is the bounded, persisted collection of recently played filenames.
// Insertion order is recency order; the oldest entry is evicted first.
type Window struct {
	capacity int
	filePath string
	entries  []string
	logger   zerolog.Logger
}

// persistedWindow is the JSON representation of the window on disk
type persistedWindow struct {
	RecentlyPlayed []string  `json:"recently_played"`
	Timestamp      time.Time `json:"timestamp"`
}

// LoadWindow reads the recency window from filePath. An unreadable or
// corrupt file is logged once and treated as an empty window; it is never
// fatal to playback.
func LoadWindow(filePath string, capacity int, logger zerolog.Logger) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}

	w := &Window{
		capacity: capacity,
		filePath: filePath,
		logger:   logger.With().Str("component", "recency").Logger(),
	}

	if filePath == "" {
		return w
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn().Err(err).Msg("Failed to read recency window, starting empty")
		}
		return w
	}

	var pw persistedWindow
	if err := json.Unmarshal(data, &pw); err != nil {
		w.logger.Warn().Err(err).Msg("Corrupt recency window file, starting empty")
		return w
	}

	w.entries = pw.RecentlyPlayed
	w.trim()
	return w
}

// Record appends filename as the most recent entry, evicting the oldest
// entries beyond capacity, and persists the window. A persistence failure
// is logged, never raised.
func (w *Window) Record(filename string) {
	// Re-playing a windowed track refreshes its recency rather than
	// occupying two slots
	for i, e := range w.entries {
		if e == filename {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			break
		}
	}

	w.entries = append(w.entries, filename)
	w.trim()
	w.persist()
}

// Contains reports whether filename is in the window
func (w *Window) Contains(filename string) bool {
	for _, e := range w.entries {
		if e == filename {
			return true
		}
	}
	return false
}

// Filenames returns a copy of the window contents, oldest first
func (w *Window) Filenames() []string {
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of entries in the window
func (w *Window) Len() int {
	return len(w.entries)
}

func (w *Window) trim() {
	if len(w.entries) > w.capacity {
		w.entries = w.entries[len(w.entries)-w.capacity:]
	}
}

// persist writes the window to disk atomically via temp file + rename
func (w *Window) persist() {
	if w.filePath == "" {
		return
	}

	pw := persistedWindow{
		RecentlyPlayed: w.entries,
		Timestamp:      time.Now(),
	}

	data, err := json.MarshalIndent(pw, "", "  ")
	if err != nil {
		w.logger.Warn().Err(err).Msg("Failed to marshal recency window")
		return
	}

	if err := os.MkdirAll(filepath.Dir(w.filePath), 0755); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to create recency window directory")
		return
	}

	tmpPath := w.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to write recency window")
		return
	}
	if err := os.Rename(tmpPath, w.filePath); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to replace recency window file")
	}
}
