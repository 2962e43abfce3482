package library

import "path/filepath"

// Track is an immutable reference to a discovered audio file
type Track struct {
	Path  string // Absolute file path (unique identifier)
	Name  string // Base filename, used as the track identifier in stores
	Title string // Display title from tags, or Name if no tags present
}

// NewTrack creates a Track from a file path with no tag metadata
func NewTrack(path string) Track {
	name := filepath.Base(path)
	return Track{
		Path:  path,
		Name:  name,
		Title: name,
	}
}

// IsZero reports whether the track is the empty "no selection" value
func (t Track) IsZero() bool {
	return t.Path == ""
}
