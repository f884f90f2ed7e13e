package session

// Handle controls a task running on its own goroutine.
type Handle struct {
	signal *Signal
	done   chan struct{}
	err    error
}

// Go arms sig and runs fn on a new goroutine. The signal is cleared when fn
// returns, so observers of sig.Done also see natural completion.
func Go(sig *Signal, fn func(sig *Signal) error) *Handle {
	sig.Arm()
	h := &Handle{signal: sig, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = fn(sig)
		sig.Clear()
	}()
	return h
}

// Stop asks the task to finish. It does not wait.
func (h *Handle) Stop() {
	h.signal.Clear()
}

// Wait blocks until the task has returned and yields its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done is closed once the task has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Running reports whether the task has not yet returned.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}
