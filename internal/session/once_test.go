package session

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/mj1618/winmatch/internal/match"
)

func TestMatchOnce(t *testing.T) {
	d, dir := fixture(t, image.Rect(20, 10, 28, 16))
	writePNG(t, filepath.Join(dir, "other.png"), noiseFrame(6, 6, 99))

	snap, err := MatchOnce(context.Background(), d.Provider(), baseOptions(dir), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(snap.Results))
	}
	button := snap.Results[0]
	if button.Template.Name != "button" || button.Decision != match.Confident || button.Target != image.Pt(24, 13) {
		t.Errorf("button = %+v", button.MatchEvent)
	}
	if button.Clicked {
		t.Error("MatchOnce clicked without click=true")
	}
	if n := len(d.Events()); n != 0 {
		t.Errorf("got %d input events, want none", n)
	}
	if d.Captures() != 1 {
		t.Errorf("captures = %d, want 1", d.Captures())
	}
}

func TestMatchOnce_Click(t *testing.T) {
	d, dir := fixture(t, image.Rect(20, 10, 28, 16))

	snap, err := MatchOnce(context.Background(), d.Provider(), baseOptions(dir), true)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Results[0].Clicked {
		t.Error("found match was not clicked")
	}
	if n := len(d.Events()); n != 3 {
		t.Errorf("got %d events, want move/down/up", n)
	}
}
