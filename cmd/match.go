package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mj1618/winmatch/internal/output"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <profile>",
	Short: "Capture once and score every template",
	Long: `Capture the profile's window once, score every template against it and
print the best location, score and decision for each. Nothing is clicked
unless --click is given. Use it to tune low_threshold and high_threshold.

Examples:
  winmatch match fight
  winmatch match fight --annotate matches.png
  winmatch match fight --click --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().Bool("click", false, "Click the confident matches")
	matchCmd.Flags().String("annotate", "", "Save the capture with match boxes drawn to this path (.png or .jpg)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	click, _ := cmd.Flags().GetBool("click")
	annotate, _ := cmd.Flags().GetString("annotate")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, opts, err := profileOptions(cfg, args[0])
	if err != nil {
		return err
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snap, err := session.MatchOnce(ctx, provider, opts, click)
	if err != nil {
		return err
	}
	report := output.NewMatchReport(p.Cmd, snap)
	if annotate != "" {
		if err := saveAnnotated(snap, annotate); err != nil {
			return err
		}
		report.Image = annotate
	}
	return output.Print(report)
}

func saveAnnotated(snap *session.Snapshot, path string) error {
	format := "png"
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		format = "jpg"
	case ".png":
	default:
		return fmt.Errorf("--annotate path must end in .png or .jpg: %s", path)
	}
	data, err := encodeImage(annotateSnapshot(snap), format, 90)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
