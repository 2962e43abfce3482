package selection

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stillpoint/stillpoint/internal/library"
)

func testTracks(names ...string) []library.Track {
	tracks := make([]library.Track, len(names))
	for i, n := range names {
		tracks[i] = library.Track{Path: "/music/" + n, Name: n, Title: n}
	}
	return tracks
}

func newTestSelector(names ...string) (*Selector, *Window) {
	w := LoadWindow("", 10, zerolog.Nop())
	return New(testTracks(names...), w, zerolog.Nop()), w
}

func TestSelectRandomEmptySet(t *testing.T) {
	s, _ := newTestSelector()

	if got := s.SelectRandom(); !got.IsZero() {
		t.Errorf("SelectRandom() on empty set = %v, want zero track", got)
	}
	if got := s.InitializeSession(); !got.IsZero() {
		t.Errorf("InitializeSession() on empty set = %v, want zero track", got)
	}
}

func TestSelectRandomExcludesWindowedTracks(t *testing.T) {
	s, w := newTestSelector("a.mp3", "b.mp3", "c.mp3")
	w.Record("a.mp3")
	w.Record("b.mp3")

	// Only c.mp3 remains outside the window
	for i := 0; i < 20; i++ {
		if got := s.SelectRandom(); got.Name != "c.mp3" {
			t.Fatalf("SelectRandom() = %q, want %q (only non-windowed candidate)", got.Name, "c.mp3")
		}
	}
}

func TestSelectRandomFallsBackToFullSet(t *testing.T) {
	s, w := newTestSelector("a.mp3", "b.mp3")
	w.Record("a.mp3")
	w.Record("b.mp3")

	// Every track is windowed: the draw must still succeed
	for i := 0; i < 20; i++ {
		if got := s.SelectRandom(); got.IsZero() {
			t.Fatal("SelectRandom() returned no selection despite non-empty set")
		}
	}
}

func TestInitializeSessionDoesNotRecordPlayed(t *testing.T) {
	s, w := newTestSelector("a.mp3", "b.mp3")

	initial := s.InitializeSession()
	if initial.IsZero() {
		t.Fatal("InitializeSession() returned no selection")
	}
	if w.Len() != 0 {
		t.Errorf("window length = %d after InitializeSession, want 0", w.Len())
	}
	if got := s.Current(); got != initial {
		t.Errorf("Current() = %v, want initial selection %v", got, initial)
	}
}

func TestPreviousOnFreshSessionReturnsNoSelection(t *testing.T) {
	s, _ := newTestSelector("a.mp3", "b.mp3")
	s.InitializeSession()

	if got := s.PreviousFile(); !got.IsZero() {
		t.Errorf("PreviousFile() on fresh session = %v, want zero track", got)
	}
}

func TestSessionHistoryCursorWalk(t *testing.T) {
	s, _ := newTestSelector("a.mp3", "b.mp3", "c.mp3", "d.mp3")

	initial := s.InitializeSession()
	first := s.NextRandomFile()
	second := s.NextRandomFile()

	if got := s.Current(); got != second {
		t.Fatalf("Current() = %v, want %v", got, second)
	}

	if got := s.PreviousFile(); got != first {
		t.Errorf("first PreviousFile() = %v, want %v", got, first)
	}
	if got := s.PreviousFile(); got != initial {
		t.Errorf("second PreviousFile() = %v, want %v", got, initial)
	}
	if got := s.PreviousFile(); !got.IsZero() {
		t.Errorf("third PreviousFile() = %v, want zero track", got)
	}

	// Back navigation never removed entries; forward selection still works
	if got := s.NextRandomFile(); got.IsZero() {
		t.Error("NextRandomFile() after back navigation returned no selection")
	}
}

func TestRecordPlayedEvictsOldestBeyondCapacity(t *testing.T) {
	tracks := make([]string, 11)
	for i := range tracks {
		tracks[i] = fmt.Sprintf("t%02d.mp3", i)
	}
	s, w := newTestSelector(tracks...)

	for _, name := range tracks {
		s.RecordPlayed(library.Track{Path: "/music/" + name, Name: name})
	}

	if w.Len() != 10 {
		t.Fatalf("window length = %d, want 10", w.Len())
	}
	if w.Contains("t00.mp3") {
		t.Error("oldest entry t00.mp3 still in window after 11th record")
	}
	got := w.Filenames()
	want := tracks[1:]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitializeSessionWithRestoresKnownTrack(t *testing.T) {
	s, _ := newTestSelector("a.mp3", "b.mp3", "c.mp3")

	if got := s.InitializeSessionWith("b.mp3"); got.Name != "b.mp3" {
		t.Errorf("InitializeSessionWith(b.mp3) = %q, want b.mp3", got.Name)
	}
	if got := s.Current().Name; got != "b.mp3" {
		t.Errorf("Current() = %q, want b.mp3", got)
	}
}

func TestInitializeSessionWithUnknownTrackFallsBack(t *testing.T) {
	s, _ := newTestSelector("a.mp3", "b.mp3")

	got := s.InitializeSessionWith("gone.mp3")
	if got.IsZero() {
		t.Fatal("InitializeSessionWith(unknown) returned no selection")
	}
	if got.Name == "gone.mp3" {
		t.Error("InitializeSessionWith returned a track not in the set")
	}
}
