package session

import (
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/templates"
)

// Discard is a Reporter that ignores everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) SessionStarted(Options, platform.Window) {}
func (discard) TemplatesLoaded(*templates.Library)      {}
func (discard) Tick(int)                                {}
func (discard) Matched(MatchEvent)                      {}
func (discard) SessionStopped(Options, Stats, error)    {}

// Reporters fans every call out to each reporter in order.
func Reporters(rs ...Reporter) Reporter {
	out := make(multi, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multi []Reporter

func (m multi) SessionStarted(opts Options, win platform.Window) {
	for _, r := range m {
		r.SessionStarted(opts, win)
	}
}

func (m multi) TemplatesLoaded(lib *templates.Library) {
	for _, r := range m {
		r.TemplatesLoaded(lib)
	}
}

func (m multi) Tick(iteration int) {
	for _, r := range m {
		r.Tick(iteration)
	}
}

func (m multi) Matched(ev MatchEvent) {
	for _, r := range m {
		r.Matched(ev)
	}
}

func (m multi) SessionStopped(opts Options, stats Stats, err error) {
	for _, r := range m {
		r.SessionStopped(opts, stats, err)
	}
}
