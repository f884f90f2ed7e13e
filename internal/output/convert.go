package output

import (
	"fmt"
	"time"

	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
)

// NewWindowEntries converts platform windows for printing.
func NewWindowEntries(windows []platform.Window) []WindowEntry {
	out := make([]WindowEntry, len(windows))
	for i, w := range windows {
		out[i] = WindowEntry{
			Handle: fmt.Sprintf("%#x", uintptr(w.Handle)),
			Title:  w.Title,
			PID:    w.PID,
			Client: [4]int{w.Client.X, w.Client.Y, w.Client.Width, w.Client.Height},
		}
	}
	return out
}

// NewMatchReport converts a snapshot for printing.
func NewMatchReport(profile string, snap *session.Snapshot) MatchReport {
	b := snap.Frame.Bounds()
	report := MatchReport{
		Profile: profile,
		Window:  snap.Window.Title,
		Frame:   [2]int{b.Dx(), b.Dy()},
		TS:      time.Now().Unix(),
		Matches: make([]TemplateMatch, 0, len(snap.Results)),
	}
	for _, r := range snap.Results {
		m := TemplateMatch{
			Template: r.Template.Name,
			Score:    r.Score,
			Location: [2]int{r.Location.X, r.Location.Y},
			Size:     [2]int{r.Template.Width, r.Template.Height},
			Decision: r.Decision.String(),
			Clicked:  r.Clicked,
		}
		if r.Decision == match.Confident {
			m.Target = &[2]int{r.Target.X, r.Target.Y}
		}
		report.Matches = append(report.Matches, m)
	}
	return report
}
