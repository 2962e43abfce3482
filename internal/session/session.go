// Package session persists the selection across process restarts. It is
// read once at startup and written once at shutdown.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is the state saved between runs
type Session struct {
	Current string    `json:"current"` // filename of the current selection
	State   string    `json:"state"`   // playback state at shutdown
	SavedAt time.Time `json:"saved_at"`
}

// Load reads a saved session from path. A missing file returns the zero
// Session with no error; a corrupt file returns an error the caller is
// expected to log and ignore.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return s, nil
}

// Save writes the session to path atomically via temp file + rename
func Save(path string, s Session) error {
	s.SavedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmpPath, path)
}
