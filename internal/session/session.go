// Package session runs the capture, match and click loop for one profile and
// manages its lifecycle and cancellation.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/winmatch/internal/dispatch"
	"github.com/mj1618/winmatch/internal/imaging"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/templates"
)

// ErrAlreadyRunning is returned when a session is started while another one
// has not finished.
var ErrAlreadyRunning = errors.New("a session is already running")

// State is a session's lifecycle stage.
type State int32

const (
	Idle State = iota
	Loading
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// MarshalText lets State print as its name in YAML and JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options is everything a session needs from its profile.
type Options struct {
	Name         string
	Alias        string
	WindowName   string
	ClientWidth  int
	ClientHeight int
	// PadX and PadY are added to the client size to get the outer window
	// size passed to the resize call.
	PadX, PadY  int
	Foreground  bool
	TemplateDir string
	Thresholds  match.Thresholds
	Interval    time.Duration
	Capture     platform.CaptureMethod
	Delays      dispatch.Delays
}

// DisplayName returns the alias, or the command name when no alias is set.
func (o Options) DisplayName() string {
	if o.Alias != "" {
		return o.Alias
	}
	return o.Name
}

// Stats counts what happened during a session.
type Stats struct {
	Iterations int           `yaml:"iterations" json:"iterations"`
	Found      int           `yaml:"found"      json:"found"`
	Near       int           `yaml:"near"       json:"near"`
	Clicks     int           `yaml:"clicks"     json:"clicks"`
	Started    time.Time     `yaml:"started"    json:"started"`
	Duration   time.Duration `yaml:"duration"   json:"duration"`
}

// MatchEvent describes one template scoring inside the found or near band.
type MatchEvent struct {
	Iteration int
	Template  string
	Score     float64
	Location  image.Point
	// Target is the client coordinate clicked, set only for found matches.
	Target   image.Point
	Decision match.Decision
	Clicked  bool
}

// Reporter receives session progress. Calls come from the session goroutine.
type Reporter interface {
	SessionStarted(opts Options, win platform.Window)
	TemplatesLoaded(lib *templates.Library)
	Tick(iteration int)
	Matched(ev MatchEvent)
	SessionStopped(opts Options, stats Stats, err error)
}

// Session binds one profile, one window and one template library for a
// single run of the loop.
type Session struct {
	opts       Options
	provider   *platform.Provider
	matcher    *match.Matcher
	dispatcher *dispatch.Dispatcher
	reporter   Reporter

	state atomic.Int32

	mu    sync.Mutex
	stats Stats
}

// New creates an idle session.
func New(p *platform.Provider, opts Options, reporter Reporter) *Session {
	if reporter == nil {
		reporter = Discard
	}
	if opts.Thresholds == (match.Thresholds{}) {
		opts.Thresholds = match.DefaultThresholds
	}
	return &Session{
		opts:       opts,
		provider:   p,
		matcher:    match.NewMatcher(),
		dispatcher: dispatch.New(p.WindowManager, p.Inputter, opts.Delays),
		reporter:   reporter,
	}
}

// Options returns the session's options.
func (s *Session) Options() Options { return s.opts }

// State returns the current lifecycle stage.
func (s *Session) State() State { return State(s.state.Load()) }

// Stats returns a snapshot of the counters. Duration is live while running.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	if s.State() != Stopped && !st.Started.IsZero() {
		st.Duration = time.Since(st.Started)
	}
	return st
}

// Start runs the session on its own goroutine, armed by sig.
func (s *Session) Start(ctx context.Context, sig *Signal) *Handle {
	return Go(sig, func(sig *Signal) error {
		return s.Run(ctx, sig)
	})
}

// Run executes the session on the calling goroutine until sig is cleared,
// ctx ends or an error aborts it. The session always ends in Stopped.
// sig must already be armed.
func (s *Session) Run(ctx context.Context, sig *Signal) (err error) {
	s.mu.Lock()
	s.stats = Stats{Started: time.Now()}
	s.mu.Unlock()
	s.state.Store(int32(Loading))

	defer func() {
		s.mu.Lock()
		s.stats.Duration = time.Since(s.stats.Started)
		stats := s.stats
		s.mu.Unlock()
		s.state.Store(int32(Stopped))
		s.reporter.SessionStopped(s.opts, stats, err)
	}()

	win, err := platform.FindWindow(s.provider.Windows, s.opts.WindowName)
	if err != nil {
		return err
	}
	s.reporter.SessionStarted(s.opts, win)

	if s.opts.ClientWidth > 0 && s.opts.ClientHeight > 0 {
		w, h := s.opts.ClientWidth+s.opts.PadX, s.opts.ClientHeight+s.opts.PadY
		if err := s.provider.WindowManager.ResizeWindow(win.Handle, w, h); err != nil {
			return fmt.Errorf("failed to resize window %q: %w", win.Title, err)
		}
	}

	lib, err := templates.Load(s.opts.TemplateDir)
	if err != nil {
		return err
	}
	s.reporter.TemplatesLoaded(lib)

	s.state.Store(int32(Running))
	mode := dispatch.ModeFor(s.opts.Foreground)
	for iter := 1; ; iter++ {
		if !sig.Active() || ctx.Err() != nil {
			return nil
		}
		if err := s.iterate(ctx, win.Handle, lib, mode, iter); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
		select {
		case <-sig.Done():
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.Interval):
		}
	}
}

// iterate captures one frame and scores every template against it. Clicks
// are issued one at a time in library order.
func (s *Session) iterate(ctx context.Context, h platform.Handle, lib *templates.Library, mode dispatch.Mode, iter int) error {
	rgba, err := s.provider.Capturer.CaptureClient(h, s.opts.Capture)
	if err != nil {
		return fmt.Errorf("failed to capture window: %w", err)
	}
	frame := imaging.FromRGBA(rgba)

	for _, tpl := range lib.All() {
		res, err := s.matcher.Match(frame, tpl.Luma)
		if err != nil {
			return fmt.Errorf("failed to match template %q: %w", tpl.Name, err)
		}
		decision := s.opts.Thresholds.Classify(res.Score)
		if decision == match.Ignore {
			continue
		}
		ev := MatchEvent{
			Iteration: iter,
			Template:  tpl.Name,
			Score:     res.Score,
			Location:  res.Location,
			Decision:  decision,
		}
		if decision == match.Confident {
			ev.Target = match.ClickTarget(res.Location, tpl.Width, tpl.Height)
			if err := s.dispatcher.Click(ctx, h, ev.Target, mode); err != nil {
				return err
			}
			ev.Clicked = true
		}
		s.count(ev)
		s.reporter.Matched(ev)
	}

	s.mu.Lock()
	s.stats.Iterations = iter
	s.mu.Unlock()
	s.reporter.Tick(iter)
	return nil
}

func (s *Session) count(ev MatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Decision {
	case match.Confident:
		s.stats.Found++
	case match.Near:
		s.stats.Near++
	}
	if ev.Clicked {
		s.stats.Clicks++
	}
}
