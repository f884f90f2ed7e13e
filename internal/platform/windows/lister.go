//go:build windows

package windows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/mj1618/winmatch/internal/platform"
	"golang.org/x/sys/windows"
)

// enumCallback is created once; the runtime limits how many callbacks a
// process may allocate.
var (
	enumMu       sync.Mutex
	enumHandles  []uintptr
	enumCallback = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

// Lister implements platform.WindowLister with EnumWindows.
type Lister struct{}

// NewLister creates a new Windows window lister.
func NewLister() *Lister { return &Lister{} }

// ListWindows implements platform.WindowLister.
func (l *Lister) ListWindows() ([]platform.Window, error) {
	enumMu.Lock()
	enumHandles = enumHandles[:0]
	ret, _, err := procEnumWindows.Call(enumCallback, 0)
	handles := append([]uintptr(nil), enumHandles...)
	enumMu.Unlock()
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %v", err)
	}

	var out []platform.Window
	for _, hwnd := range handles {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			continue
		}
		title := windowText(hwnd)
		if title == "" {
			continue
		}
		w := platform.Window{Handle: platform.Handle(hwnd), Title: title}
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		w.PID = int(pid)
		if b, err := clientBounds(hwnd); err == nil {
			w.Client = b
		}
		out = append(out, w)
	}
	return out, nil
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

// clientBounds returns the client rectangle in screen coordinates.
func clientBounds(hwnd uintptr) (platform.Bounds, error) {
	var r rect
	if ret, _, err := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ret == 0 {
		return platform.Bounds{}, fmt.Errorf("GetClientRect failed: %v", err)
	}
	var origin point
	if ret, _, err := procClientToScreen.Call(hwnd, uintptr(unsafe.Pointer(&origin))); ret == 0 {
		return platform.Bounds{}, fmt.Errorf("ClientToScreen failed: %v", err)
	}
	return platform.Bounds{
		X:      int(origin.X),
		Y:      int(origin.Y),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, nil
}

func checkWindow(h platform.Handle) error {
	if ok, _, _ := procIsWindow.Call(uintptr(h)); ok == 0 {
		return fmt.Errorf("window %#x no longer exists", uintptr(h))
	}
	return nil
}
