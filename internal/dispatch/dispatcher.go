// Package dispatch turns a matched client-area location into a mouse click on
// the target window.
package dispatch

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
)

// Mode selects the click strategy.
type Mode int

const (
	// Background posts window messages without touching input focus.
	Background Mode = iota
	// Foreground focuses the window, clicks with the real cursor and
	// restores the previously focused window.
	Foreground
)

func (m Mode) String() string {
	if m == Foreground {
		return "foreground"
	}
	return "background"
}

// ModeFor maps a profile's foreground flag to a Mode.
func ModeFor(foreground bool) Mode {
	if foreground {
		return Foreground
	}
	return Background
}

// Delays between the steps of a click sequence.
type Delays struct {
	// BetweenMessages separates move, down and up in background mode.
	BetweenMessages time.Duration
	// AfterFocus lets the window settle after being brought forward.
	AfterFocus time.Duration
	// BeforeRestore keeps focus on the target until the click lands.
	BeforeRestore time.Duration
}

// DefaultDelays are tuned for games that drop events sent back-to-back.
var DefaultDelays = Delays{
	BetweenMessages: 100 * time.Millisecond,
	AfterFocus:      10 * time.Millisecond,
	BeforeRestore:   100 * time.Millisecond,
}

// Dispatcher clicks inside a window using either strategy.
type Dispatcher struct {
	windows platform.WindowManager
	input   platform.Inputter
	delays  Delays
	sleep   func(time.Duration)
}

// New creates a dispatcher.
func New(windows platform.WindowManager, input platform.Inputter, delays Delays) *Dispatcher {
	return &Dispatcher{windows: windows, input: input, delays: delays, sleep: time.Sleep}
}

// Click performs one click at client coordinate pt of window h.
func (d *Dispatcher) Click(ctx context.Context, h platform.Handle, pt image.Point, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == Foreground {
		return d.foregroundClick(h, pt)
	}
	return d.backgroundClick(h, pt)
}

func (d *Dispatcher) backgroundClick(h platform.Handle, pt image.Point) error {
	seq := []platform.MouseMessage{platform.MouseMove, platform.MouseLeftDown, platform.MouseLeftUp}
	for i, msg := range seq {
		if i > 0 {
			d.sleep(d.delays.BetweenMessages)
		}
		if err := d.input.PostMouse(h, msg, pt.X, pt.Y); err != nil {
			return fmt.Errorf("post %s to window %#x: %w", msg, uintptr(h), err)
		}
	}
	return nil
}

// foregroundClick always restores the previously focused window, even when a
// step in between fails.
func (d *Dispatcher) foregroundClick(h platform.Handle, pt image.Point) (err error) {
	previous := d.windows.ForegroundWindow()
	defer func() {
		if previous == 0 || previous == h {
			return
		}
		if rerr := d.windows.SetForegroundWindow(previous); rerr != nil && err == nil {
			err = fmt.Errorf("restore focus to window %#x: %w", uintptr(previous), rerr)
		}
	}()

	origin, err := d.windows.ClientOrigin(h)
	if err != nil {
		return fmt.Errorf("client origin of window %#x: %w", uintptr(h), err)
	}
	if err := d.windows.SetForegroundWindow(h); err != nil {
		return fmt.Errorf("focus window %#x: %w", uintptr(h), err)
	}
	d.sleep(d.delays.AfterFocus)

	screen := origin.Add(pt)
	if err := d.input.MoveCursor(screen.X, screen.Y); err != nil {
		return fmt.Errorf("move cursor to %v: %w", screen, err)
	}
	if err := d.input.Click(platform.MouseLeft); err != nil {
		return fmt.Errorf("click at %v: %w", screen, err)
	}
	d.sleep(d.delays.BeforeRestore)
	return nil
}
