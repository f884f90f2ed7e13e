//go:build windows

package windows

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"unsafe"

	"github.com/mj1618/winmatch/internal/platform"
	"golang.org/x/sys/windows"
)

// KeyListener implements platform.KeyListener with a WH_KEYBOARD_LL hook.
// Only one Listen may be active at a time.
type KeyListener struct {
	mu     sync.Mutex
	active bool
}

// NewKeyListener creates a new Windows key listener.
func NewKeyListener() *KeyListener { return &KeyListener{} }

// hookState is shared with the single hook callback.
var (
	hookMu    sync.Mutex
	hookKeys  map[uint32]bool
	hookCombo []uint32
	hookFire  func()

	hookCallback = windows.NewCallback(keyboardProc)
)

func keyboardProc(nCode int, wParam, lParam uintptr) uintptr {
	if nCode >= 0 {
		ev := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		vk := normalizeVK(ev.VkCode)
		hookMu.Lock()
		var fire func()
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			repeat := hookKeys[vk]
			hookKeys[vk] = true
			if !repeat && comboHeld() {
				fire = hookFire
			}
		case wmKeyUp, wmSysKeyUp:
			delete(hookKeys, vk)
		}
		hookMu.Unlock()
		if fire != nil {
			// The hook must return quickly or Windows drops it.
			go fire()
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func comboHeld() bool {
	for _, vk := range hookCombo {
		if !hookKeys[vk] {
			return false
		}
	}
	return len(hookCombo) > 0
}

// Listen implements platform.KeyListener. The hook runs a message loop on a
// locked OS thread until ctx is done.
func (k *KeyListener) Listen(ctx context.Context, combo platform.KeyCombo, fn func()) error {
	codes := make([]uint32, 0, len(combo))
	for _, key := range combo {
		vk, err := virtualKey(key)
		if err != nil {
			return err
		}
		codes = append(codes, vk)
	}

	k.mu.Lock()
	if k.active {
		k.mu.Unlock()
		return fmt.Errorf("key listener already running")
	}
	k.active = true
	k.mu.Unlock()
	defer func() {
		k.mu.Lock()
		k.active = false
		k.mu.Unlock()
	}()

	hookMu.Lock()
	hookKeys = make(map[uint32]bool)
	hookCombo = codes
	hookFire = fn
	hookMu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback, 0, 0)
	if hook == 0 {
		return fmt.Errorf("SetWindowsHookEx failed: %v", err)
	}
	defer procUnhookWindowsHookEx.Call(hook)

	tid := windows.GetCurrentThreadId()
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
		case <-stopped:
		}
	}()

	var m msg
	for {
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(ret) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessage failed: %v", err)
		}
	}
}

// Virtual-key codes. The low-level hook reports left/right modifier codes,
// which normalizeVK folds into the generic ones.
const (
	vkShift  = 0x10
	vkCtrl   = 0x11
	vkAlt    = 0x12
	vkEscape = 0x1B
	vkF1     = 0x70
)

func normalizeVK(vk uint32) uint32 {
	switch vk {
	case 0xA0, 0xA1:
		return vkShift
	case 0xA2, 0xA3:
		return vkCtrl
	case 0xA4, 0xA5:
		return vkAlt
	}
	return vk
}

func virtualKey(k platform.Key) (uint32, error) {
	switch k {
	case platform.KeyShift:
		return vkShift, nil
	case platform.KeyCtrl:
		return vkCtrl, nil
	case platform.KeyAlt:
		return vkAlt, nil
	case platform.KeyEscape:
		return vkEscape, nil
	}
	s := string(k)
	if len(s) == 1 {
		c := s[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint32(c-'a') + 'A', nil
		case c >= '0' && c <= '9':
			return uint32(c), nil
		}
	}
	if len(s) >= 2 && s[0] == 'f' {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 12 {
			return vkF1 + uint32(n-1), nil
		}
	}
	return 0, fmt.Errorf("no virtual key for %q", k)
}
