package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/mj1618/winmatch/internal/templates"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	lineWidth       = 120
	spinnerMaxDots  = 5
)

var (
	foundColor = color.New(color.FgGreen)
	nearColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	infoColor  = color.New(color.FgCyan)
)

// spinner is the progress line state. It is passed to renderSpinner
// explicitly so every frame is derived from visible state.
type spinner struct {
	dots int
}

// renderSpinner overwrites the current line with the next progress frame.
func renderSpinner(w io.Writer, s *spinner, hint string) {
	clearLine(w)
	fmt.Fprintf(w, "Processing%s (%s to stop)", strings.Repeat(".", s.dots), hint)
	s.dots++
	if s.dots > spinnerMaxDots {
		s.dots = 0
	}
}

// clearLine blanks the current terminal line without relying on ANSI
// support: back up, overwrite with spaces, back up again.
func clearLine(w io.Writer) {
	back := strings.Repeat("\b", lineWidth)
	fmt.Fprint(w, back+strings.Repeat(" ", lineWidth)+back)
}

// consoleReporter prints session progress for a human at a terminal.
type consoleReporter struct {
	mu   sync.Mutex
	out  io.Writer
	hint string
	spin spinner
	now  func() time.Time
}

func newConsoleReporter(out io.Writer, stopKeys platform.KeyCombo) *consoleReporter {
	return &consoleReporter{out: out, hint: stopKeys.String(), now: time.Now}
}

func (r *consoleReporter) stamp() string {
	return r.now().Format(timestampLayout)
}

// SessionStarted implements session.Reporter.
func (r *consoleReporter) SessionStarted(opts session.Options, win platform.Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	infoColor.Fprintf(r.out, "(%s) Loaded!\n", opts.DisplayName())
	fmt.Fprintf(r.out, "%s -- Window %q found.\n", r.stamp(), win.Title)
	fmt.Fprintf(r.out, "%s -- Loading template images from %q ...\n", r.stamp(), opts.TemplateDir)
}

// TemplatesLoaded implements session.Reporter.
func (r *consoleReporter) TemplatesLoaded(lib *templates.Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range lib.Skipped() {
		errorColor.Fprintf(r.out, "%s -- Skipped unreadable template %s\n", r.stamp(), path)
	}
	fmt.Fprintf(r.out, "%s -- Template images all loaded (%d).\n", r.stamp(), lib.Len())
	r.spin = spinner{}
}

// Tick implements session.Reporter.
func (r *consoleReporter) Tick(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	renderSpinner(r.out, &r.spin, r.hint)
}

// Matched implements session.Reporter.
func (r *consoleReporter) Matched(ev session.MatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clearLine(r.out)
	switch ev.Decision {
	case match.Confident:
		foundColor.Fprintf(r.out, "%s - (%s) Found! diff(%.4f) click (%d, %d)\n",
			r.stamp(), ev.Template, ev.Score, ev.Target.X, ev.Target.Y)
	case match.Near:
		nearColor.Fprintf(r.out, "%s - (%s) Nearly found. diff(%.4f)\n", r.stamp(), ev.Template, ev.Score)
	}
}

// SessionStopped implements session.Reporter.
func (r *consoleReporter) SessionStopped(opts session.Options, stats session.Stats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clearLine(r.out)
	if err != nil {
		errorColor.Fprintf(r.out, "%s -- (%s) Stopped: %v\n", r.stamp(), opts.DisplayName(), err)
		return
	}
	infoColor.Fprintf(r.out, "(%s) Finished! %d iterations, %d found, %d near, %d clicks in %s\n",
		opts.DisplayName(), stats.Iterations, stats.Found, stats.Near, stats.Clicks,
		stats.Duration.Round(time.Millisecond))
}
