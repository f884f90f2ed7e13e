package platform

import (
	"context"
	"image"
)

// WindowLister enumerates visible top-level windows.
type WindowLister interface {
	// ListWindows returns every visible top-level window that has a title,
	// in OS z-order.
	ListWindows() ([]Window, error)
}

// Capturer grabs window pixels.
type Capturer interface {
	// CaptureClient returns the client area of the window as an RGBA raster at
	// its current size. The capture goes through an off-screen render path so
	// obscured windows are still captured.
	CaptureClient(h Handle, method CaptureMethod) (*image.RGBA, error)
}

// WindowManager manages window geometry and focus.
type WindowManager interface {
	// ResizeWindow sets the outer size of the window without moving it or
	// changing its z-order.
	ResizeWindow(h Handle, width, height int) error
	// ClientOrigin returns the screen position of the client area's top-left corner.
	ClientOrigin(h Handle) (image.Point, error)
	// ForegroundWindow returns the window that currently has input focus.
	ForegroundWindow() Handle
	// SetForegroundWindow brings the window to the foreground.
	SetForegroundWindow(h Handle) error
}

// Inputter simulates mouse input.
type Inputter interface {
	// PostMouse posts a synthetic mouse window message carrying client
	// coordinates. Focus is left untouched.
	PostMouse(h Handle, msg MouseMessage, x, y int) error
	// MoveCursor moves the real system cursor to screen coordinates.
	MoveCursor(x, y int) error
	// Click sends an OS-level button press and release at the cursor.
	Click(button MouseButton) error
}

// KeyListener observes global keyboard input.
type KeyListener interface {
	// Listen blocks until ctx is done, calling fn each time every key of combo
	// is held down together.
	Listen(ctx context.Context, combo KeyCombo, fn func()) error
}
