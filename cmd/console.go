package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive console (default)",
	Long: `Start the interactive console. Type a profile's command to start its
session; the session runs until the stop keys are pressed, or until a line
containing Esc is entered. Built-in commands:

  h, help          Show the available commands
  t, test          Run the progress spinner until stopped
  q, quit, exit    Leave the console`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	out := cmd.OutOrStdout()
	reporter := newConsoleReporter(out, stopKeys)
	manager := session.NewManager(provider, sessionReporter(reporter, store))
	manager.ListenStopKeys(ctx, stopKeys)

	c := newConsole(cfg, manager, out, stopKeys)
	return c.run(ctx, readLines(cmd.InOrStdin()))
}

// readLines feeds every input line to the returned channel, which is closed
// at EOF. One reader serves the whole console so no line is lost between
// prompts and sessions.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// console is the command loop. Sessions run one at a time; while one runs
// the loop only watches input for Esc.
type console struct {
	cfg      *config.Config
	manager  *session.Manager
	out      io.Writer
	stopKeys platform.KeyCombo
	// spinInterval paces the test spinner.
	spinInterval time.Duration
}

func newConsole(cfg *config.Config, manager *session.Manager, out io.Writer, stopKeys platform.KeyCombo) *console {
	return &console{
		cfg:          cfg,
		manager:      manager,
		out:          out,
		stopKeys:     stopKeys,
		spinInterval: 100 * time.Millisecond,
	}
}

func (c *console) run(ctx context.Context, lines <-chan string) error {
	printHelp(c.out, c.cfg)
	for {
		fmt.Fprint(c.out, "Enter command: ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				return nil
			}
			line = l
		}

		token := strings.TrimSpace(line)
		switch token {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "h", "help":
			printHelp(c.out, c.cfg)
			continue
		case "t", "test":
			h, err := c.manager.StartTask(c.spinnerTask)
			if err != nil {
				errorColor.Fprintln(c.out, err)
				continue
			}
			if lines = c.wait(ctx, h, lines); lines == nil {
				return nil
			}
			continue
		}

		p, opts, err := profileOptions(c.cfg, token)
		if err != nil {
			fmt.Fprintf(c.out, "Unknown command %q. (enter h or help for the command list)\n", token)
			continue
		}
		h, err := c.manager.Start(ctx, opts)
		if err != nil {
			errorColor.Fprintf(c.out, "(%s) %v\n", p.DisplayName(), err)
			continue
		}
		if lines = c.wait(ctx, h, lines); lines == nil {
			return nil
		}
	}
}

// wait blocks until h finishes. Input lines are swallowed; a line containing
// Esc stops the task and returns once it has ended, so the next line goes to
// the prompt. Session errors are shown by the reporter. It returns lines, or
// nil once input has ended.
func (c *console) wait(ctx context.Context, h *session.Handle, lines <-chan string) <-chan string {
	for {
		select {
		case <-h.Done():
			return lines
		case <-ctx.Done():
			h.Stop()
			<-h.Done()
			return lines
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if strings.ContainsRune(line, '\x1b') {
				h.Stop()
				<-h.Done()
				return lines
			}
		}
	}
}

// spinnerTask animates the progress line until the signal is cleared.
func (c *console) spinnerTask(sig *session.Signal) error {
	var s spinner
	ticker := time.NewTicker(c.spinInterval)
	defer ticker.Stop()
	for sig.Active() {
		renderSpinner(c.out, &s, c.stopKeys.String())
		select {
		case <-sig.Done():
		case <-ticker.C:
		}
	}
	clearLine(c.out)
	fmt.Fprintln(c.out, "Test looping finished!")
	return nil
}
