package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"github.com/stillpoint/stillpoint/internal/playback"
)

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 500 * time.Millisecond,
	}
}

// App is the terminal view over the playback machine. It reads state from
// the machine for display and forwards key presses as transition events;
// it holds no playback state of its own.
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	progress   *tview.TextView
	status     *tview.TextView

	config  Config
	machine *playback.Machine

	// Last-rendered content for change detection
	lastNowPlaying string
	lastProgress   string

	// Cached progress bar width, updated only when GetInnerRect returns
	// a positive value to avoid flicker during layout
	lastBarWidth int

	done chan struct{}
}

// New creates the TUI over the given machine
func New(cfg Config, machine *playback.Machine) *App {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = 500 * time.Millisecond
	}
	a := &App{
		app:     tview.NewApplication(),
		config:  cfg,
		machine: machine,
		done:    make(chan struct{}),
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]space:play/pause  s:stop  n:next  p:previous  q:quit[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 0, 3, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(a.status, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true)
}

// handleKeyEvent forwards key presses to the machine
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case ' ':
		a.machine.Toggle()
		return nil
	case 's', 'S':
		a.machine.Stop()
		return nil
	case 'n', 'N':
		a.machine.Next()
		return nil
	case 'p', 'P':
		a.machine.Previous()
		return nil
	}
	return event
}

// Run blocks until the user quits
func (a *App) Run() error {
	go a.refreshLoop()
	defer close(a.done)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// refreshLoop drives redraws at the configured cadence. It is the only
// source of redraws.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.config.RefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

// refresh re-renders the display from machine queries
func (a *App) refresh() {
	state := a.machine.State()
	track := a.machine.CurrentTrack()
	progress := a.machine.Progress()

	a.app.QueueUpdateDraw(func() {
		a.updateNowPlaying(state, track.Title, track.Name)
		a.updateProgress(state, progress)
	})
}

// updateNowPlaying renders the now-playing panel
func (a *App) updateNowPlaying(state playback.State, title, name string) {
	var text string

	if title == "" {
		text = "\n\n[gray]No audio files[-]"
	} else if state == playback.StateStopped {
		text = fmt.Sprintf("\n\n[gray]%s[-]\n\n[gray]stopped[-]", tview.Escape(truncate(title, 60)))
	} else {
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(truncate(title, 60))))
		if name != title {
			sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", tview.Escape(truncate(name, 60))))
		}

		stateIcon := "[green]▶[-]"
		if state == playback.StatePaused {
			stateIcon = "[yellow]⏸[-]"
		}
		sb.WriteString(fmt.Sprintf("\n%s", stateIcon))
		text = sb.String()
	}

	if text != a.lastNowPlaying {
		a.lastNowPlaying = text
		a.nowPlaying.SetText(text)
	}
}

// updateProgress renders the progress bar
func (a *App) updateProgress(state playback.State, progress float64) {
	var text string

	if state != playback.StateStopped {
		_, _, width, _ := a.progress.GetInnerRect()
		barWidth := width - 8 // Account for the percentage display
		if barWidth > 0 {
			a.lastBarWidth = barWidth
		}
		if a.lastBarWidth < 10 {
			a.lastBarWidth = 10
		}

		text = fmt.Sprintf("%s %3.0f%%", buildProgressBar(progress, a.lastBarWidth), progress*100)
	}

	if text != a.lastProgress {
		a.lastProgress = text
		a.progress.SetText(text)
	}
}

// buildProgressBar renders a textual progress bar of the given width
func buildProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncate shortens text to the given display width, adding an ellipsis
func truncate(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}
