package player

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stillpoint/stillpoint/internal/library"
)

func TestStopWhenIdleReturnsZero(t *testing.T) {
	m := NewMPV("mpv", zerolog.Nop())

	if got := m.Stop(); got != 0 {
		t.Errorf("Stop() on idle adapter = %v, want 0", got)
	}
	if m.IsPlaying() {
		t.Error("IsPlaying() = true on idle adapter")
	}
	if m.IsPaused() {
		t.Error("IsPaused() = true on idle adapter")
	}
	if m.Alive() {
		t.Error("Alive() = true on idle adapter")
	}
	if got := m.Progress(); got != 0 {
		t.Errorf("Progress() on idle adapter = %v, want 0", got)
	}
	if got := m.TrackName(); got != "" {
		t.Errorf("TrackName() on idle adapter = %q, want empty", got)
	}
}

func TestPauseResumeWhenIdleAreNoops(t *testing.T) {
	m := NewMPV("mpv", zerolog.Nop())

	// Must not panic or change state
	m.Pause()
	m.Resume()

	if m.Alive() {
		t.Error("Alive() = true after idle pause/resume")
	}
}

func TestPlayMissingFileIsNoop(t *testing.T) {
	m := NewMPV("definitely-not-a-player", zerolog.Nop())

	track := library.Track{Path: filepath.Join(t.TempDir(), "gone.mp3"), Name: "gone.mp3"}
	if err := m.Play(track); err != nil {
		t.Fatalf("Play on missing file returned error: %v", err)
	}
	if m.Alive() {
		t.Error("Alive() = true after Play on missing file")
	}
	if got := m.Stop(); got != 0 {
		t.Errorf("Stop() = %v after no-op Play, want 0", got)
	}
}

// fakeIPCServer answers mpv-style get_property/set_property requests over a
// unix socket, returning the configured property values
func fakeIPCServer(t *testing.T, socketPath string, props map[string]float64) net.Listener {
	t.Helper()

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				dec := json.NewDecoder(c)
				enc := json.NewEncoder(c)
				for {
					var req ipcRequest
					if err := dec.Decode(&req); err != nil {
						return
					}

					resp := map[string]any{
						"error":      "success",
						"request_id": req.RequestID,
					}
					if len(req.Command) >= 2 && req.Command[0] == "get_property" {
						name, _ := req.Command[1].(string)
						if v, ok := props[name]; ok {
							resp["data"] = v
						} else {
							resp["error"] = "property unavailable"
						}
					}
					if err := enc.Encode(resp); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return ln
}

func TestIPCGetFloat(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ln := fakeIPCServer(t, socketPath, map[string]float64{
		"time-pos": 42.5,
		"duration": 85.0,
	})
	defer ln.Close()

	c := newIPCClient(socketPath, time.Second)

	pos, err := c.getFloat("time-pos")
	if err != nil {
		t.Fatalf("getFloat(time-pos): %v", err)
	}
	if pos != 42.5 {
		t.Errorf("time-pos = %v, want 42.5", pos)
	}

	dur, err := c.getFloat("duration")
	if err != nil {
		t.Fatalf("getFloat(duration): %v", err)
	}
	if dur != 85.0 {
		t.Errorf("duration = %v, want 85.0", dur)
	}
}

func TestIPCRejectedCommandReturnsError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ln := fakeIPCServer(t, socketPath, nil)
	defer ln.Close()

	c := newIPCClient(socketPath, time.Second)
	if _, err := c.getFloat("time-pos"); err == nil {
		t.Error("getFloat on unavailable property did not return an error")
	}
}

func TestIPCMissingSocketReturnsError(t *testing.T) {
	c := newIPCClient(filepath.Join(t.TempDir(), "nope.sock"), 100*time.Millisecond)
	if err := c.setBool("pause", true); err == nil {
		t.Error("setBool on missing socket did not return an error")
	}
}

func TestIPCSetBool(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ln := fakeIPCServer(t, socketPath, nil)
	defer ln.Close()

	c := newIPCClient(socketPath, time.Second)
	if err := c.setBool("pause", false); err != nil {
		t.Errorf("setBool(pause, false): %v", err)
	}
}

func TestWaitForSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	exited := make(chan struct{})

	// Socket appears shortly after the wait begins
	go func() {
		time.Sleep(100 * time.Millisecond)
		ln, err := net.Listen("unix", socketPath)
		if err != nil {
			return
		}
		defer ln.Close()
		time.Sleep(3 * time.Second)
	}()

	if err := waitForSocket(socketPath, exited); err != nil {
		t.Errorf("waitForSocket: %v", err)
	}
	_ = os.Remove(socketPath)
}

func TestWaitForSocketSubprocessDied(t *testing.T) {
	exited := make(chan struct{})
	close(exited)

	if err := waitForSocket(filepath.Join(t.TempDir(), "never.sock"), exited); err == nil {
		t.Error("waitForSocket did not fail when subprocess already exited")
	}
}
