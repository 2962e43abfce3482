package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stillpoint/stillpoint/internal/config"
	"github.com/stillpoint/stillpoint/internal/library"
)

var scanLibraryDir string

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the discovered audio library",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanLibraryDir, "library", "", "Audio library directory (overrides config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if scanLibraryDir != "" {
		cfg.LibraryDir = scanLibraryDir
	}

	tracks, err := library.Scan(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to scan library %s: %w", cfg.LibraryDir, err)
	}

	if len(tracks) == 0 {
		fmt.Printf("No audio files found in %s\n", cfg.LibraryDir)
		return nil
	}

	for _, t := range tracks {
		if t.Title != t.Name {
			fmt.Printf("%s  (%s)\n", t.Name, t.Title)
		} else {
			fmt.Println(t.Name)
		}
	}
	fmt.Printf("\n%d tracks\n", len(tracks))
	return nil
}
