package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWindowNotFound is returned when no visible window title contains the
// requested substring.
var ErrWindowNotFound = errors.New("window not found")

// FindWindow returns the first window whose title contains substr.
// The match is case-sensitive, like the titles the OS reports.
func FindWindow(lister WindowLister, substr string) (Window, error) {
	windows, err := lister.ListWindows()
	if err != nil {
		return Window{}, fmt.Errorf("failed to list windows: %w", err)
	}
	for _, w := range windows {
		if strings.Contains(w.Title, substr) {
			return w, nil
		}
	}
	return Window{}, fmt.Errorf("%w: no window title contains %q", ErrWindowNotFound, substr)
}
