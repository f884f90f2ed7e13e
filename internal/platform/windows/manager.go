//go:build windows

package windows

import (
	"fmt"
	"image"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
)

// WindowManager implements platform.WindowManager.
type WindowManager struct{}

// NewWindowManager creates a new Windows window manager.
func NewWindowManager() *WindowManager { return &WindowManager{} }

// ResizeWindow implements platform.WindowManager. The window keeps its
// position and z-order.
func (m *WindowManager) ResizeWindow(h platform.Handle, width, height int) error {
	if err := checkWindow(h); err != nil {
		return err
	}
	ret, _, err := procSetWindowPos.Call(uintptr(h), 0, 0, 0,
		uintptr(width), uintptr(height), swpDrawFrame|swpNoMove|swpNoZOrder)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos failed: %v", err)
	}
	return nil
}

// ClientOrigin implements platform.WindowManager.
func (m *WindowManager) ClientOrigin(h platform.Handle) (image.Point, error) {
	b, err := clientBounds(uintptr(h))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(b.X, b.Y), nil
}

// ForegroundWindow implements platform.WindowManager.
func (m *WindowManager) ForegroundWindow() platform.Handle {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return platform.Handle(hwnd)
}

// SetForegroundWindow implements platform.WindowManager. Minimized windows
// are restored first.
func (m *WindowManager) SetForegroundWindow(h platform.Handle) error {
	if err := checkWindow(h); err != nil {
		return err
	}
	if iconic, _, _ := procIsIconic.Call(uintptr(h)); iconic != 0 {
		procShowWindow.Call(uintptr(h), swRestore)
		time.Sleep(50 * time.Millisecond)
	}
	if ret, _, err := procSetForegroundWindow.Call(uintptr(h)); ret == 0 {
		return fmt.Errorf("SetForegroundWindow failed: %v", err)
	}
	return nil
}
