package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stillpoint/stillpoint/internal/config"
	"github.com/stillpoint/stillpoint/internal/history"
	"github.com/stillpoint/stillpoint/internal/library"
	"github.com/stillpoint/stillpoint/internal/playback"
	"github.com/stillpoint/stillpoint/internal/player"
	"github.com/stillpoint/stillpoint/internal/selection"
	"github.com/stillpoint/stillpoint/internal/session"
	"github.com/stillpoint/stillpoint/internal/tui"
)

var (
	playLogFile    string
	playLogLevel   string
	playLibraryDir string
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the meditation player",
	Long: `Run the terminal player.

Keys:
  space   play / pause / resume
  s       stop
  n       next (random, avoiding recent repeats)
  p       previous (session history)
  q       quit

Tracks that play past 90% are remembered in a recency window and excluded
from random selection until they age out. Play history is stored in a
local database; see 'stillpoint stats' and 'stillpoint history'.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Log file path (default: discard; the TUI owns the terminal)")
	playCmd.Flags().StringVar(&playLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	playCmd.Flags().StringVar(&playLibraryDir, "library", "", "Audio library directory (overrides config)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if playLibraryDir != "" {
		cfg.LibraryDir = playLibraryDir
	}

	logger := setupLogger(playLogFile, playLogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tracks, err := library.Scan(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to scan library %s: %w", cfg.LibraryDir, err)
	}
	logger.Info().Int("tracks", len(tracks)).Str("dir", cfg.LibraryDir).Msg("Library scanned")

	store, err := history.NewStore(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	window := selection.LoadWindow(filepath.Join(cfg.DataDir, "recent.json"), cfg.RecentWindow, logger)
	selector := selection.New(tracks, window, logger)

	// Restore the previous session's selection when it still exists
	sessionFile := filepath.Join(cfg.DataDir, "session.json")
	if sess, err := session.Load(sessionFile); err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable session file")
	} else if sess.Current != "" {
		selector.InitializeSessionWith(sess.Current)
	}
	if selector.Current().IsZero() {
		selector.InitializeSession()
	}

	mpv := player.NewMPV(cfg.PlayerBin, logger)
	machine := playback.New(playback.Config{
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}, mpv, selector, store, logger)

	app := tui.New(tui.DefaultConfig(), machine)
	runErr := app.Run()

	// Final stop so no subprocess outlives us, then persist the session
	machine.Shutdown()
	if err := session.Save(sessionFile, session.Session{
		Current: machine.CurrentTrack().Name,
		State:   machine.State().String(),
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to save session")
	}

	if runErr != nil {
		return runErr
	}
	logger.Info().Msg("Player stopped")
	return nil
}

// setupLogger creates a logger with the specified configuration. With no
// log file, output is discarded: the TUI owns the terminal and stray log
// lines would corrupt the display.
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if logFile == "" {
		return zerolog.Nop()
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return zerolog.Nop()
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger()
}
