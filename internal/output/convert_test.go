package output

import (
	"image"
	"testing"

	"github.com/mj1618/winmatch/internal/imaging"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/mj1618/winmatch/internal/templates"
)

func TestNewWindowEntries(t *testing.T) {
	entries := NewWindowEntries([]platform.Window{
		{Handle: 0x1a2b, Title: "Fantasy Game", PID: 42, Client: platform.Bounds{X: 8, Y: 31, Width: 1280, Height: 720}},
	})
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Handle != "0x1a2b" || e.Title != "Fantasy Game" || e.PID != 42 || e.Client != [4]int{8, 31, 1280, 720} {
		t.Errorf("entry = %+v", e)
	}
}

func TestNewMatchReport(t *testing.T) {
	tpl := &templates.Template{Name: "accept", Luma: imaging.NewLuma(10, 6)}
	snap := &session.Snapshot{
		Window: platform.Window{Title: "Fantasy Game"},
		Frame:  image.NewRGBA(image.Rect(0, 0, 64, 48)),
		Results: []session.TemplateScore{
			{Template: tpl, MatchEvent: session.MatchEvent{Template: "accept", Score: 1, Location: image.Pt(3, 4), Target: image.Pt(8, 7), Decision: match.Confident}},
			{Template: tpl, MatchEvent: session.MatchEvent{Template: "accept", Score: 5, Location: image.Pt(1, 1), Decision: match.Near}},
		},
	}

	r := NewMatchReport("fight", snap)
	if r.Profile != "fight" || r.Window != "Fantasy Game" || r.Frame != [2]int{64, 48} {
		t.Errorf("report = %+v", r)
	}
	if len(r.Matches) != 2 {
		t.Fatalf("got %d matches", len(r.Matches))
	}
	if m := r.Matches[0]; m.Decision != "found" || m.Target == nil || *m.Target != [2]int{8, 7} || m.Size != [2]int{10, 6} {
		t.Errorf("found match = %+v", m)
	}
	if m := r.Matches[1]; m.Decision != "near" || m.Target != nil {
		t.Errorf("near match = %+v", m)
	}
}
