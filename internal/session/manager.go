package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mj1618/winmatch/internal/platform"
)

// Status is a snapshot of the manager's current or most recent session.
type Status struct {
	Running bool   `yaml:"running"          json:"running"`
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`
	State   State  `yaml:"state"            json:"state"`
	Stats   Stats  `yaml:"stats"            json:"stats"`
	Error   string `yaml:"error,omitempty"   json:"error,omitempty"`
}

// Manager runs at most one session or task at a time against a single shared
// Signal, so a process-wide stop-key listener can cancel whichever is active.
type Manager struct {
	provider *platform.Provider
	reporter Reporter
	signal   *Signal

	mu      sync.Mutex
	current *Session
	handle  *Handle

	listenOnce sync.Once
}

// NewManager creates a manager with no session.
func NewManager(p *platform.Provider, reporter Reporter) *Manager {
	if reporter == nil {
		reporter = Discard
	}
	return &Manager{provider: p, reporter: reporter, signal: NewSignal()}
}

// Signal returns the shared cancellation signal.
func (m *Manager) Signal() *Signal { return m.signal }

// Start launches a session for opts. It fails with ErrAlreadyRunning while
// another session or task is active.
func (m *Manager) Start(ctx context.Context, opts Options) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil && m.handle.Running() {
		return nil, ErrAlreadyRunning
	}
	s := New(m.provider, opts, m.reporter)
	m.current = s
	m.handle = s.Start(ctx, m.signal)
	return m.handle, nil
}

// StartTask runs fn under the shared signal, as Start does for sessions.
func (m *Manager) StartTask(fn func(sig *Signal) error) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil && m.handle.Running() {
		return nil, ErrAlreadyRunning
	}
	m.current = nil
	m.handle = Go(m.signal, fn)
	return m.handle, nil
}

// Stop clears the signal. It reports whether anything was running.
func (m *Manager) Stop() bool {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil || !h.Running() {
		return false
	}
	h.Stop()
	return true
}

// Wait blocks until the active session or task returns.
func (m *Manager) Wait() error {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Wait()
}

// Status describes the current or last session.
func (m *Manager) Status() Status {
	m.mu.Lock()
	s, h := m.current, m.handle
	m.mu.Unlock()

	var st Status
	if h != nil {
		st.Running = h.Running()
		if !st.Running {
			if err := h.Wait(); err != nil {
				st.Error = err.Error()
			}
		}
	}
	if s != nil {
		st.Profile = s.Options().Name
		st.State = s.State()
		st.Stats = s.Stats()
	}
	return st
}

// ListenStopKeys starts the global key listener that stops the active
// session whenever combo is pressed. Only the first call has any effect; the
// listener lives until ctx ends.
func (m *Manager) ListenStopKeys(ctx context.Context, combo platform.KeyCombo) {
	m.listenOnce.Do(func() {
		go func() {
			err := m.provider.Keys.Listen(ctx, combo, func() {
				if m.Stop() {
					slog.Debug("stop keys pressed", "keys", combo.String())
				}
			})
			if err != nil {
				slog.Warn("stop key listener exited", "keys", combo.String(), "error", err)
			}
		}()
	})
}
