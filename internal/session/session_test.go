package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "session.json")

	if err := Save(fp, Session{Current: "calm.mp3", State: "stopped"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s, err := Load(fp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Current != "calm.mp3" {
		t.Errorf("Current = %q, want calm.mp3", s.Current)
	}
	if s.State != "stopped" {
		t.Errorf("State = %q, want stopped", s.State)
	}
	if s.SavedAt.IsZero() {
		t.Error("SavedAt not stamped on save")
	}
}

func TestLoadMissingFileReturnsZeroSession(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if s.Current != "" {
		t.Errorf("Current = %q, want empty", s.Current)
	}
}

func TestLoadCorruptFileReturnsError(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(fp, []byte("{oops"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(fp); err == nil {
		t.Error("Load on corrupt file did not return an error")
	}
}
