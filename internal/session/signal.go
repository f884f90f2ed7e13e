package session

import (
	"sync"
	"sync/atomic"
)

// Signal is the cancellation flag shared between a running session and the
// sources that may stop it. Arm raises it when a session starts; Clear lowers
// it. The loop polls Active at iteration boundaries and selects on Done while
// sleeping.
type Signal struct {
	active atomic.Bool

	mu   sync.Mutex
	done chan struct{}
}

// NewSignal returns a signal in the cleared state.
func NewSignal() *Signal {
	done := make(chan struct{})
	close(done)
	return &Signal{done: done}
}

// Arm raises the flag and replaces the Done channel. Arming an armed signal
// is a no-op.
func (s *Signal) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Load() {
		return
	}
	s.done = make(chan struct{})
	s.active.Store(true)
}

// Clear lowers the flag. It is safe to call from any goroutine, any number
// of times.
func (s *Signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active.Load() {
		return
	}
	s.active.Store(false)
	close(s.done)
}

// Active reports whether the flag is raised.
func (s *Signal) Active() bool {
	return s.active.Load()
}

// Done returns a channel closed when the flag is next cleared.
func (s *Signal) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
