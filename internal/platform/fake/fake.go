// Package fake provides an in-memory platform.Provider for tests. It records
// every input event and tracks focus so callers can assert on side effects.
package fake

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/mj1618/winmatch/internal/platform"
)

// Event is one recorded input or focus change.
type Event struct {
	Kind   string // "post", "move", "click", "focus", "resize"
	Handle platform.Handle
	Msg    platform.MouseMessage
	X, Y   int
}

// Desktop is a fake window system. Its zero value is not usable; use New.
type Desktop struct {
	mu         sync.Mutex
	windows    []platform.Window
	frames     map[platform.Handle][]*image.RGBA
	frameIdx   map[platform.Handle]int
	captureErr map[platform.Handle]error
	foreground platform.Handle
	cursor     image.Point
	events     []Event
	captures   int

	// OnCapture, when set, runs after every capture with the running count.
	OnCapture func(n int)

	combos chan platform.KeyCombo
}

// New returns an empty desktop.
func New() *Desktop {
	return &Desktop{
		frames:     make(map[platform.Handle][]*image.RGBA),
		frameIdx:   make(map[platform.Handle]int),
		captureErr: make(map[platform.Handle]error),
		combos:     make(chan platform.KeyCombo, 8),
	}
}

// Provider returns a provider whose every capability is backed by d.
func (d *Desktop) Provider() *platform.Provider {
	return &platform.Provider{
		Windows:       d,
		Capturer:      d,
		WindowManager: d,
		Inputter:      d,
		Keys:          d,
	}
}

// AddWindow registers a window. The first added window gets focus.
func (d *Desktop) AddWindow(w platform.Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows = append(d.windows, w)
	if d.foreground == 0 {
		d.foreground = w.Handle
	}
}

// SetFrames sets the frames returned by successive captures of h. The last
// frame repeats once the list is exhausted.
func (d *Desktop) SetFrames(h platform.Handle, frames ...*image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames[h] = frames
	d.frameIdx[h] = 0
}

// FailCapture makes captures of h return err.
func (d *Desktop) FailCapture(h platform.Handle, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.captureErr[h] = err
}

// SetForeground changes focus without recording an event.
func (d *Desktop) SetForeground(h platform.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.foreground = h
}

// Events returns a copy of the recorded events.
func (d *Desktop) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// Captures returns the number of captures served.
func (d *Desktop) Captures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captures
}

// Cursor returns the current cursor position.
func (d *Desktop) Cursor() image.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// Press simulates the user holding combo. Every active Listen call whose
// combo equals it fires.
func (d *Desktop) Press(combo platform.KeyCombo) {
	d.combos <- combo
}

// ListWindows implements platform.WindowLister.
func (d *Desktop) ListWindows() ([]platform.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]platform.Window, len(d.windows))
	copy(out, d.windows)
	return out, nil
}

// CaptureClient implements platform.Capturer.
func (d *Desktop) CaptureClient(h platform.Handle, method platform.CaptureMethod) (*image.RGBA, error) {
	d.mu.Lock()
	if err := d.captureErr[h]; err != nil {
		d.mu.Unlock()
		return nil, err
	}
	frames := d.frames[h]
	if len(frames) == 0 {
		d.mu.Unlock()
		return nil, fmt.Errorf("no frames for window %d", h)
	}
	i := d.frameIdx[h]
	if i < len(frames)-1 {
		d.frameIdx[h] = i + 1
	}
	d.captures++
	n := d.captures
	hook := d.OnCapture
	frame := frames[i]
	d.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return frame, nil
}

// ResizeWindow implements platform.WindowManager.
func (d *Desktop) ResizeWindow(h platform.Handle, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.lookup(h)
	if w == nil {
		return fmt.Errorf("no window %d", h)
	}
	d.events = append(d.events, Event{Kind: "resize", Handle: h, X: width, Y: height})
	return nil
}

// ClientOrigin implements platform.WindowManager.
func (d *Desktop) ClientOrigin(h platform.Handle) (image.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.lookup(h)
	if w == nil {
		return image.Point{}, fmt.Errorf("no window %d", h)
	}
	return image.Pt(w.Client.X, w.Client.Y), nil
}

// ForegroundWindow implements platform.WindowManager.
func (d *Desktop) ForegroundWindow() platform.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.foreground
}

// SetForegroundWindow implements platform.WindowManager.
func (d *Desktop) SetForegroundWindow(h platform.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.foreground = h
	d.events = append(d.events, Event{Kind: "focus", Handle: h})
	return nil
}

// PostMouse implements platform.Inputter.
func (d *Desktop) PostMouse(h platform.Handle, msg platform.MouseMessage, x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lookup(h) == nil {
		return fmt.Errorf("no window %d", h)
	}
	d.events = append(d.events, Event{Kind: "post", Handle: h, Msg: msg, X: x, Y: y})
	return nil
}

// MoveCursor implements platform.Inputter.
func (d *Desktop) MoveCursor(x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = image.Pt(x, y)
	d.events = append(d.events, Event{Kind: "move", X: x, Y: y})
	return nil
}

// Click implements platform.Inputter.
func (d *Desktop) Click(button platform.MouseButton) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Kind: "click", Handle: d.foreground, X: d.cursor.X, Y: d.cursor.Y})
	return nil
}

// Listen implements platform.KeyListener.
func (d *Desktop) Listen(ctx context.Context, combo platform.KeyCombo, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case pressed := <-d.combos:
			if pressed.String() == combo.String() {
				fn()
			}
		}
	}
}

func (d *Desktop) lookup(h platform.Handle) *platform.Window {
	for i := range d.windows {
		if d.windows[i].Handle == h {
			return &d.windows[i]
		}
	}
	return nil
}
