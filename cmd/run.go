package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mj1618/winmatch/internal/output"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <profile>",
	Short: "Run one profile's session without the console",
	Long: `Run the capture, match and click loop for one profile. The session stops
when the stop keys are pressed, on Ctrl+C, or after --for has elapsed.
The final session status is printed when it ends.

Examples:
  winmatch run fight
  winmatch run fight --for 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Duration("for", 0, "Stop the session after this long (0 = until stopped)")
}

func runRun(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetDuration("for")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, opts, err := profileOptions(cfg, args[0])
	if err != nil {
		return err
	}
	stopKeys, err := cfg.StopCombo()
	if err != nil {
		return err
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reporter := newConsoleReporter(cmd.ErrOrStderr(), stopKeys)
	manager := session.NewManager(provider, sessionReporter(reporter, store))
	manager.ListenStopKeys(ctx, stopKeys)

	h, err := manager.Start(ctx, opts)
	if err != nil {
		return err
	}
	if duration > 0 {
		timer := time.AfterFunc(duration, h.Stop)
		defer timer.Stop()
	}
	runErr := h.Wait()
	if err := output.Print(manager.Status()); err != nil {
		return err
	}
	return runErr
}
