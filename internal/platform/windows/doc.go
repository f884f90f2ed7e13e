//go:build windows

// Package windows provides the Win32 platform backend: window enumeration
// and geometry through user32, off-screen capture through PrintWindow and
// gdi32, synthetic input through window messages and SendInput, and a
// low-level keyboard hook for stop keys.
package windows
