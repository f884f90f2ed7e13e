//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"github.com/mj1618/winmatch/internal/platform"
)

// Inputter implements platform.Inputter.
type Inputter struct{}

// NewInputter creates a new Windows inputter.
func NewInputter() *Inputter { return &Inputter{} }

// PostMouse implements platform.Inputter. Move and button-down are preceded
// by a WM_SETCURSOR so applications that hit-test on it see the pointer
// over their client area.
func (i *Inputter) PostMouse(h platform.Handle, m platform.MouseMessage, x, y int) error {
	hwnd := uintptr(h)
	var message uint32
	switch m {
	case platform.MouseMove:
		message = wmMouseMove
	case platform.MouseLeftDown:
		message = wmLButtonDown
	case platform.MouseLeftUp:
		message = wmLButtonUp
	default:
		return fmt.Errorf("unsupported mouse message: %s", m)
	}
	if message != wmLButtonUp {
		// HTCLIENT in the low word, the triggering message in the high word.
		procSendMessageW.Call(hwnd, wmSetCursor, hwnd, uintptr(1|message<<16))
	}
	ret, _, err := procPostMessageW.Call(hwnd, uintptr(message), mkLButton, makeLParam(x, y))
	if ret == 0 {
		return fmt.Errorf("PostMessage %s failed: %v", m, err)
	}
	return nil
}

// MoveCursor implements platform.Inputter.
func (i *Inputter) MoveCursor(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos failed: %v", err)
	}
	return nil
}

// Click implements platform.Inputter.
func (i *Inputter) Click(button platform.MouseButton) error {
	var down, up uint32
	switch button {
	case platform.MouseRight:
		down, up = mouseEventRightDown, mouseEventRightUp
	case platform.MouseMiddle:
		down, up = mouseEventMiddleDown, mouseEventMiddleUp
	default:
		down, up = mouseEventLeftDown, mouseEventLeftUp
	}
	inputs := []input{
		{Type: inputMouse, Mi: mouseInput{Flags: down}},
		{Type: inputMouse, Mi: mouseInput{Flags: up}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput failed: %v", err)
	}
	return nil
}
