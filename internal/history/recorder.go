package history

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/mj1618/winmatch/internal/templates"
)

// Recorder is a session.Reporter that writes to a Store. Database errors are
// logged and never interrupt the session.
type Recorder struct {
	store *Store

	mu      sync.Mutex
	current int64
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// SessionStarted implements session.Reporter.
func (r *Recorder) SessionStarted(opts session.Options, win platform.Window) {
	r.start(opts, win.Title)
}

func (r *Recorder) start(opts session.Options, window string) int64 {
	id, err := r.store.StartSession(opts.Name, opts.Alias, window, time.Now())
	if err != nil {
		slog.Warn("history: failed to record session start", "profile", opts.Name, "error", err)
		id = 0
	}
	r.mu.Lock()
	r.current = id
	r.mu.Unlock()
	return id
}

// TemplatesLoaded implements session.Reporter.
func (r *Recorder) TemplatesLoaded(*templates.Library) {}

// Tick implements session.Reporter.
func (r *Recorder) Tick(int) {}

// Matched implements session.Reporter.
func (r *Recorder) Matched(ev session.MatchEvent) {
	r.mu.Lock()
	id := r.current
	r.mu.Unlock()
	if id == 0 {
		return
	}
	err := r.store.AddEvent(EventRecord{
		SessionID: id,
		At:        time.Now(),
		Iteration: ev.Iteration,
		Template:  ev.Template,
		Decision:  ev.Decision.String(),
		Score:     ev.Score,
		X:         ev.Location.X,
		Y:         ev.Location.Y,
		Clicked:   ev.Clicked,
	})
	if err != nil {
		slog.Warn("history: failed to record match", "template", ev.Template, "error", err)
	}
}

// SessionStopped implements session.Reporter. A session that failed before
// its window was found still gets a row so the failure is visible.
func (r *Recorder) SessionStopped(opts session.Options, stats session.Stats, err error) {
	r.mu.Lock()
	id := r.current
	r.current = 0
	r.mu.Unlock()
	if id == 0 {
		id = r.start(opts, "")
		r.mu.Lock()
		r.current = 0
		r.mu.Unlock()
		if id == 0 {
			return
		}
	}
	rec := SessionRecord{
		Duration:   stats.Duration,
		Iterations: stats.Iterations,
		Found:      stats.Found,
		Near:       stats.Near,
		Clicks:     stats.Clicks,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if ferr := r.store.FinishSession(id, rec); ferr != nil {
		slog.Warn("history: failed to record session end", "profile", opts.Name, "error", ferr)
	}
}
