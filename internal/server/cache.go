package server

import (
	"sync"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
)

// WindowCache provides a TTL-based cache for the window list, so agents
// polling list_windows do not enumerate the desktop on every call.
type WindowCache struct {
	mu      sync.Mutex
	windows []platform.Window
	stamp   time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewWindowCache creates a new cache. A ttl of 0 disables caching.
func NewWindowCache(ttl time.Duration) *WindowCache {
	return &WindowCache{ttl: ttl, now: time.Now}
}

// ListWindows returns the cached list if within TTL, otherwise lists fresh.
func (c *WindowCache) ListWindows(lister platform.WindowLister) ([]platform.Window, error) {
	if c.ttl == 0 {
		return lister.ListWindows()
	}

	c.mu.Lock()
	if c.windows != nil && c.now().Sub(c.stamp) < c.ttl {
		windows := c.windows
		c.mu.Unlock()
		return windows, nil
	}
	c.mu.Unlock()

	windows, err := lister.ListWindows()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.windows = windows
	c.stamp = c.now()
	c.mu.Unlock()

	return windows, nil
}

// Invalidate clears the cache. Resizing or focusing a window changes what
// the list reports.
func (c *WindowCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = nil
}
