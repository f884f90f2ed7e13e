package cmd

import (
	"context"
	"fmt"
	"image"

	"github.com/mj1618/winmatch/internal/dispatch"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click at client coordinates inside a window",
	Long: `Send one click to a window at client-area coordinates, using the same
delivery a session uses. Background clicks post mouse messages and leave the
focus alone; --foreground focuses the window, moves the real cursor and
restores the previous focus afterwards.

Examples:
  winmatch click --window "Fantasy Game" --x 120 --y 80
  winmatch click --window "Fantasy Game" --x 120 --y 80 --foreground`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().String("window", "", "Target window by title substring")
	clickCmd.Flags().Int("x", 0, "X coordinate relative to the client area")
	clickCmd.Flags().Int("y", 0, "Y coordinate relative to the client area")
	clickCmd.Flags().Bool("foreground", false, "Focus the window and click with the real cursor")
}

func runClick(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	foreground, _ := cmd.Flags().GetBool("foreground")

	if x < 0 || y < 0 {
		return fmt.Errorf("--x and --y must not be negative")
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := findWindow(provider, window)
	if err != nil {
		return err
	}
	if x >= win.Client.Width || y >= win.Client.Height {
		return fmt.Errorf("(%d, %d) is outside the %dx%d client area of %q", x, y, win.Client.Width, win.Client.Height, win.Title)
	}

	mode := dispatch.ModeFor(foreground)
	d := dispatch.New(provider.WindowManager, provider.Inputter, dispatch.DefaultDelays)
	if err := d.Click(context.Background(), win.Handle, image.Pt(x, y), mode); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Clicked (%d, %d) in %q (%s)\n", x, y, win.Title, mode)
	return nil
}
