package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle is the opaque OS identifier of a top-level window.
type Handle uintptr

// Window describes a top-level window.
type Window struct {
	Handle Handle `yaml:"handle" json:"handle"`
	Title  string `yaml:"title"  json:"title"`
	PID    int    `yaml:"pid"    json:"pid"`
	// Client is the client area in screen coordinates.
	Client Bounds `yaml:"client" json:"client"`
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X      int `yaml:"x"      json:"x"`
	Y      int `yaml:"y"      json:"y"`
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// MouseMessage is a synthetic mouse window message.
type MouseMessage int

const (
	MouseMove MouseMessage = iota
	MouseLeftDown
	MouseLeftUp
)

func (m MouseMessage) String() string {
	switch m {
	case MouseMove:
		return "move"
	case MouseLeftDown:
		return "left-down"
	case MouseLeftUp:
		return "left-up"
	default:
		return fmt.Sprintf("MouseMessage(%d)", int(m))
	}
}

// CaptureMethod selects how window pixels are grabbed.
type CaptureMethod string

const (
	// CaptureWindow renders the window into an off-screen bitmap (works when obscured).
	CaptureWindow CaptureMethod = "window"
	// CaptureScreen copies the client rectangle from the desktop (requires the window visible).
	CaptureScreen CaptureMethod = "screen"
)

// ParseCaptureMethod converts a config value to CaptureMethod. Empty selects CaptureWindow.
func ParseCaptureMethod(s string) (CaptureMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "window", "printwindow":
		return CaptureWindow, nil
	case "screen", "bitblt":
		return CaptureScreen, nil
	default:
		return CaptureWindow, fmt.Errorf("unknown capture method: %q (expected window or screen)", s)
	}
}

// Key is a virtual key understood by KeyListener.
type Key string

const (
	KeyShift  Key = "shift"
	KeyCtrl   Key = "ctrl"
	KeyAlt    Key = "alt"
	KeyEscape Key = "esc"
)

// KeyCombo is a set of keys that must be held together.
type KeyCombo []Key

func (c KeyCombo) String() string {
	parts := make([]string, len(c))
	for i, k := range c {
		if len(k) == 1 {
			parts[i] = strings.ToUpper(string(k))
		} else {
			parts[i] = strings.ToUpper(string(k[:1])) + string(k[1:])
		}
	}
	return strings.Join(parts, "+")
}

// ParseKeyCombo parses "shift+q", "esc" or "ctrl+alt+s" into a KeyCombo.
// Single letters, digits and F1-F12 are accepted as non-modifier keys.
func ParseKeyCombo(s string) (KeyCombo, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty key combo")
	}
	var combo KeyCombo
	seen := make(map[Key]bool)
	for _, part := range strings.Split(s, "+") {
		k, err := parseKey(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid key combo %q: %w", s, err)
		}
		if seen[k] {
			return nil, fmt.Errorf("invalid key combo %q: duplicate key %q", s, k)
		}
		seen[k] = true
		combo = append(combo, k)
	}
	return combo, nil
}

func parseKey(s string) (Key, error) {
	s = strings.ToLower(s)
	if s == "" {
		return "", fmt.Errorf("empty key")
	}
	switch s {
	case "shift":
		return KeyShift, nil
	case "ctrl", "control":
		return KeyCtrl, nil
	case "alt":
		return KeyAlt, nil
	case "esc", "escape":
		return KeyEscape, nil
	}
	if len(s) == 1 && (s[0] >= 'a' && s[0] <= 'z' || s[0] >= '0' && s[0] <= '9') {
		return Key(s), nil
	}
	if len(s) >= 2 && len(s) <= 3 && s[0] == 'f' {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 12 {
			return Key(s), nil
		}
	}
	return "", fmt.Errorf("unknown key %q", s)
}
