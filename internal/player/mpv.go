package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stillpoint/stillpoint/internal/library"
)

const (
	// ipcTimeout bounds every control-socket round trip so a hung
	// subprocess cannot freeze the caller
	ipcTimeout = 250 * time.Millisecond

	// socketWait is how long Play waits for the subprocess to create its
	// control socket before giving up
	socketWait     = 3 * time.Second
	socketWaitStep = 50 * time.Millisecond

	// stopGrace is how long Stop waits after SIGTERM before escalating
	// to SIGKILL
	stopGrace = 500 * time.Millisecond
)

// mpvSocketCounter disambiguates socket paths across plays within a process
var mpvSocketCounter atomic.Int64

// MPV drives a single mpv subprocess over its JSON IPC socket.
// It owns at most one subprocess at a time; starting a new track stops the
// previous one first.
type MPV struct {
	bin    string
	logger zerolog.Logger

	mu           sync.Mutex
	cmd          *exec.Cmd
	ipc          *ipcClient
	socketPath   string
	trackName    string
	paused       bool
	lastProgress float64
	exited       chan struct{} // closed when the subprocess exits
}

// NewMPV creates an adapter that spawns the given mpv binary
func NewMPV(bin string, logger zerolog.Logger) *MPV {
	if bin == "" {
		bin = "mpv"
	}
	return &MPV{
		bin:    bin,
		logger: logger.With().Str("component", "player").Logger(),
	}
}

// Play starts playback of track, stopping any active subprocess first.
// The subprocess is started paused so the control socket is established
// before audio begins, then unpaused once the socket answers.
func (m *MPV) Play(track library.Track) error {
	m.Stop()

	if _, err := os.Stat(track.Path); err != nil {
		// Missing file: leave the adapter idle rather than erroring
		m.logger.Warn().Str("path", track.Path).Msg("Play target does not exist")
		return nil
	}

	socketPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("stillpoint-mpv-%d-%d.sock", os.Getpid(), mpvSocketCounter.Add(1)))

	cmd := exec.Command(m.bin,
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--pause",
		"--input-ipc-server="+socketPath,
		track.Path,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", m.bin, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	ipc := newIPCClient(socketPath, ipcTimeout)
	if err := waitForSocket(socketPath, exited); err != nil {
		m.logger.Warn().Err(err).Msg("Control socket never became ready")
		terminate(cmd, exited)
		_ = os.Remove(socketPath)
		return fmt.Errorf("control socket not ready: %w", err)
	}

	// Socket confirmed, begin playback
	if err := ipc.setBool("pause", false); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to unpause after startup")
	}

	m.mu.Lock()
	m.cmd = cmd
	m.ipc = ipc
	m.socketPath = socketPath
	m.trackName = track.Name
	m.paused = false
	m.lastProgress = 0
	m.exited = exited
	m.mu.Unlock()

	m.logger.Info().Str("track", track.Name).Msg("Playback started")
	return nil
}

// Pause pauses the active subprocess. No-op when nothing is playing.
func (m *MPV) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.aliveLocked() || m.paused {
		return
	}
	if err := m.ipc.setBool("pause", true); err != nil {
		m.logger.Debug().Err(err).Msg("Pause command failed")
		return
	}
	m.paused = true
}

// Resume unpauses the active subprocess. No-op when nothing is paused.
func (m *MPV) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.aliveLocked() || !m.paused {
		return
	}
	if err := m.ipc.setBool("pause", false); err != nil {
		m.logger.Debug().Err(err).Msg("Resume command failed")
		return
	}
	m.paused = false
}

// Stop terminates the subprocess and returns the last computed progress
// fraction. Safe to call when idle.
func (m *MPV) Stop() float64 {
	m.mu.Lock()
	cmd := m.cmd
	exited := m.exited
	socketPath := m.socketPath
	progress := m.lastProgress
	m.cmd = nil
	m.ipc = nil
	m.socketPath = ""
	m.trackName = ""
	m.paused = false
	m.lastProgress = 0
	m.exited = nil
	m.mu.Unlock()

	if cmd == nil {
		return 0
	}

	terminate(cmd, exited)
	if socketPath != "" {
		_ = os.Remove(socketPath)
	}

	m.logger.Info().Float64("progress", progress).Msg("Playback stopped")
	return progress
}

// IsPlaying reports whether a live subprocess is actively playing
func (m *MPV) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliveLocked() && !m.paused
}

// IsPaused reports whether a live subprocess is paused
func (m *MPV) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliveLocked() && m.paused
}

// Alive reports whether the subprocess from the last Play is still running
func (m *MPV) Alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliveLocked()
}

func (m *MPV) aliveLocked() bool {
	if m.cmd == nil || m.exited == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Progress queries position and duration over the control socket and
// returns the normalized fraction, or 0 on any communication failure.
func (m *MPV) Progress() float64 {
	m.mu.Lock()
	ipc := m.ipc
	alive := m.aliveLocked()
	m.mu.Unlock()

	if ipc == nil || !alive {
		return 0
	}

	pos, err := ipc.getFloat("time-pos")
	if err != nil {
		return 0
	}
	dur, err := ipc.getFloat("duration")
	if err != nil || dur <= 0 {
		return 0
	}

	progress := pos / dur
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	m.mu.Lock()
	m.lastProgress = progress
	m.mu.Unlock()

	return progress
}

// TrackName returns the display name of the last played track, or ""
func (m *MPV) TrackName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackName
}

// waitForSocket polls for the control socket file until it exists, the
// subprocess dies, or the wait budget is exhausted
func waitForSocket(path string, exited <-chan struct{}) error {
	deadline := time.Now().Add(socketWait)
	for time.Now().Before(deadline) {
		select {
		case <-exited:
			return fmt.Errorf("subprocess exited during startup")
		default:
		}
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		time.Sleep(socketWaitStep)
	}
	return fmt.Errorf("timed out after %s", socketWait)
}

// terminate sends SIGTERM to the subprocess and escalates to SIGKILL if it
// does not exit within the grace period. A dead process is not an error.
func terminate(cmd *exec.Cmd, exited <-chan struct{}) {
	if cmd.Process == nil {
		return
	}

	select {
	case <-exited:
		return // already gone
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Process already reaped; treat as stopped
		return
	}

	select {
	case <-exited:
	case <-time.After(stopGrace):
		_ = cmd.Process.Kill()
		<-exited
	}
}
