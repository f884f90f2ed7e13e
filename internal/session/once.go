package session

import (
	"context"
	"fmt"
	"image"

	"github.com/mj1618/winmatch/internal/dispatch"
	"github.com/mj1618/winmatch/internal/imaging"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/templates"
)

// Snapshot is the outcome of scoring a single capture against every template.
type Snapshot struct {
	Window platform.Window
	Frame  *image.RGBA
	// Results holds one entry per template in library order, including
	// templates that scored in the ignore band.
	Results []TemplateScore
}

// TemplateScore is one template's best alignment in a snapshot.
type TemplateScore struct {
	Template *templates.Template
	MatchEvent
}

// MatchOnce resolves the window, captures it once and scores every
// template. Found matches are clicked only when click is true. The window is
// never resized.
func MatchOnce(ctx context.Context, p *platform.Provider, opts Options, click bool) (*Snapshot, error) {
	win, err := platform.FindWindow(p.Windows, opts.WindowName)
	if err != nil {
		return nil, err
	}
	lib, err := templates.Load(opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	rgba, err := p.Capturer.CaptureClient(win.Handle, opts.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to capture window: %w", err)
	}
	if opts.Thresholds == (match.Thresholds{}) {
		opts.Thresholds = match.DefaultThresholds
	}

	frame := imaging.FromRGBA(rgba)
	matcher := match.NewMatcher()
	dispatcher := dispatch.New(p.WindowManager, p.Inputter, opts.Delays)
	snap := &Snapshot{Window: win, Frame: rgba}
	for _, tpl := range lib.All() {
		res, err := matcher.Match(frame, tpl.Luma)
		if err != nil {
			return nil, fmt.Errorf("failed to match template %q: %w", tpl.Name, err)
		}
		ev := MatchEvent{
			Iteration: 1,
			Template:  tpl.Name,
			Score:     res.Score,
			Location:  res.Location,
			Decision:  opts.Thresholds.Classify(res.Score),
		}
		if ev.Decision == match.Confident {
			ev.Target = match.ClickTarget(res.Location, tpl.Width, tpl.Height)
			if click {
				if err := dispatcher.Click(ctx, win.Handle, ev.Target, dispatch.ModeFor(opts.Foreground)); err != nil {
					return nil, err
				}
				ev.Clicked = true
			}
		}
		snap.Results = append(snap.Results, TemplateScore{Template: tpl, MatchEvent: ev})
	}
	return snap, nil
}
