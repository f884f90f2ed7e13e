package session

import (
	"context"
	"errors"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/platform/fake"
	"github.com/mj1618/winmatch/internal/templates"
)

const (
	editor platform.Handle = 0x10
	game   platform.Handle = 0x20
)

type recorder struct {
	mu      sync.Mutex
	started []platform.Window
	loaded  int
	ticks   []int
	matches []MatchEvent
	stopped []error
	stats   Stats
}

func (r *recorder) SessionStarted(_ Options, w platform.Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, w)
}

func (r *recorder) TemplatesLoaded(lib *templates.Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = lib.Len()
}

func (r *recorder) Tick(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, i)
}

func (r *recorder) Matched(ev MatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, ev)
}

func (r *recorder) SessionStopped(_ Options, st Stats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = append(r.stopped, err)
	r.stats = st
}

func noiseFrame(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// fixture builds a desktop whose game window shows a noise frame and a
// template directory holding an exact crop of that frame at crop.
func fixture(t *testing.T, crop image.Rectangle) (*fake.Desktop, string) {
	t.Helper()
	frame := noiseFrame(64, 48, 1)
	d := fake.New()
	d.AddWindow(platform.Window{Handle: editor, Title: "notes.txt - Editor"})
	d.AddWindow(platform.Window{Handle: game, Title: "Fantasy Game", Client: platform.Bounds{X: 100, Y: 50, Width: 64, Height: 48}})
	d.SetFrames(game, frame)

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "button.png"), frame.SubImage(crop))
	return d, dir
}

func baseOptions(dir string) Options {
	return Options{
		Name:        "fight",
		WindowName:  "Fantasy",
		TemplateDir: dir,
		Thresholds:  match.DefaultThresholds,
		Interval:    time.Millisecond,
	}
}

// stopAfter clears sig once n captures have been served.
func stopAfter(d *fake.Desktop, sig *Signal, n int) {
	d.OnCapture = func(got int) {
		if got >= n {
			sig.Clear()
		}
	}
}

func run(t *testing.T, d *fake.Desktop, opts Options, rep Reporter, captures int) (*Session, error) {
	t.Helper()
	s := New(d.Provider(), opts, rep)
	sig := NewSignal()
	stopAfter(d, sig, captures)
	sig.Arm()
	err := s.Run(context.Background(), sig)
	return s, err
}

func TestRun_ConfidentMatchClicksOncePerIteration(t *testing.T) {
	d, dir := fixture(t, image.Rect(20, 10, 28, 16))
	rep := &recorder{}

	s, err := run(t, d, baseOptions(dir), rep, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != Stopped {
		t.Errorf("state = %s, want stopped", s.State())
	}

	var posts []fake.Event
	for _, ev := range d.Events() {
		if ev.Kind == "post" {
			posts = append(posts, ev)
		}
	}
	if len(posts) != 6 {
		t.Fatalf("got %d posted messages over 2 iterations, want 6", len(posts))
	}
	for _, ev := range posts {
		if ev.Handle != game || ev.X != 24 || ev.Y != 13 {
			t.Errorf("posted %+v, want game window at (24,13)", ev)
		}
	}

	st := s.Stats()
	if st.Iterations != 2 || st.Found != 2 || st.Clicks != 2 || st.Near != 0 {
		t.Errorf("stats = %+v, want 2 iterations, 2 found, 2 clicks", st)
	}
	if len(rep.matches) != 2 || rep.matches[0].Location != image.Pt(20, 10) || rep.matches[0].Score != 0 {
		t.Errorf("matches = %+v", rep.matches)
	}
	if len(rep.stopped) != 1 || rep.stopped[0] != nil {
		t.Errorf("stopped = %v, want one nil error", rep.stopped)
	}
	if rep.loaded != 1 || len(rep.started) != 1 || rep.started[0].Handle != game {
		t.Errorf("started = %+v loaded = %d", rep.started, rep.loaded)
	}
}

func TestRun_NearMatchReportsWithoutClicking(t *testing.T) {
	d, dir := fixture(t, image.Rect(20, 10, 28, 16))
	opts := baseOptions(dir)
	// An exact match scores 0, which only the near band admits here.
	opts.Thresholds = match.Thresholds{Low: 0, High: 1}
	rep := &recorder{}

	s, err := run(t, d, opts, rep, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(d.Events()); n != 0 {
		t.Errorf("got %d input events, want none", n)
	}
	if len(rep.matches) != 1 || rep.matches[0].Decision != match.Near || rep.matches[0].Clicked {
		t.Errorf("matches = %+v, want one unclicked near match", rep.matches)
	}
	if st := s.Stats(); st.Near != 1 || st.Clicks != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRun_StopsWithinOneCycle(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	opts := baseOptions(dir)
	opts.Thresholds = match.Thresholds{Low: -1, High: -0.5}

	s, err := run(t, d, opts, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Captures(); got != 3 {
		t.Errorf("captures = %d, want 3: the loop must finish the cycle it is in and no more", got)
	}
	if st := s.Stats(); st.Iterations != 3 {
		t.Errorf("iterations = %d, want 3", st.Iterations)
	}
}

func TestRun_ClearedBeforeStartDoesNotCapture(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	s := New(d.Provider(), baseOptions(dir), nil)
	if err := s.Run(context.Background(), NewSignal()); err != nil {
		t.Fatal(err)
	}
	if d.Captures() != 0 {
		t.Errorf("captured %d frames with a cleared signal", d.Captures())
	}
	if s.State() != Stopped {
		t.Errorf("state = %s", s.State())
	}
}

func TestRun_WindowNotFound(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	opts := baseOptions(dir)
	opts.WindowName = "Missing"
	rep := &recorder{}

	s, err := run(t, d, opts, rep, 1)
	if !errors.Is(err, platform.ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
	if s.State() != Stopped {
		t.Errorf("state = %s, want stopped", s.State())
	}
	if len(rep.stopped) != 1 || !errors.Is(rep.stopped[0], platform.ErrWindowNotFound) {
		t.Errorf("reported stop errors = %v", rep.stopped)
	}
	if len(rep.started) != 0 {
		t.Error("SessionStarted called without a window")
	}
}

func TestRun_CaptureFailureAbortsSession(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	denied := errors.New("access denied")
	d.FailCapture(game, denied)

	_, err := run(t, d, baseOptions(dir), nil, 100)
	if !errors.Is(err, denied) {
		t.Fatalf("err = %v, want wrapped capture error", err)
	}
}

func TestRun_TemplateLargerThanFrame(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	writePNG(t, filepath.Join(dir, "huge.png"), image.NewRGBA(image.Rect(0, 0, 100, 10)))

	_, err := run(t, d, baseOptions(dir), nil, 100)
	if !errors.Is(err, match.ErrTemplateTooLarge) {
		t.Fatalf("err = %v, want ErrTemplateTooLarge", err)
	}
}

func TestRun_ResizesWithPadding(t *testing.T) {
	d, dir := fixture(t, image.Rect(0, 0, 4, 4))
	opts := baseOptions(dir)
	opts.ClientWidth, opts.ClientHeight = 100, 80
	opts.PadX, opts.PadY = 16, 39

	if _, err := run(t, d, opts, nil, 1); err != nil {
		t.Fatal(err)
	}
	events := d.Events()
	if len(events) == 0 || events[0].Kind != "resize" {
		t.Fatalf("first event = %+v, want resize", events)
	}
	if events[0].X != 116 || events[0].Y != 119 {
		t.Errorf("resized to %dx%d, want 116x119", events[0].X, events[0].Y)
	}
}

func TestRun_ForegroundRestoresFocus(t *testing.T) {
	d, dir := fixture(t, image.Rect(20, 10, 28, 16))
	opts := baseOptions(dir)
	opts.Foreground = true

	if _, err := run(t, d, opts, nil, 1); err != nil {
		t.Fatal(err)
	}
	if got := d.ForegroundWindow(); got != editor {
		t.Errorf("foreground = %#x, want editor restored", got)
	}
	// client origin (100,50) + click target (24,13)
	if got := d.Cursor(); got != image.Pt(124, 63) {
		t.Errorf("cursor = %v, want (124,63)", got)
	}
}

func TestRun_CancelDuringIterationIsCleanStop(t *testing.T) {
	d, dir := fixture(t, image.Rect(10, 8, 18, 14))
	rep := &recorder{}
	s := New(d.Provider(), baseOptions(dir), rep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.OnCapture = func(int) { cancel() }
	sig := NewSignal()
	sig.Arm()

	if err := s.Run(ctx, sig); err != nil {
		t.Fatalf("Run = %v, want nil after cancel", err)
	}
	if n := len(d.Events()); n != 0 {
		t.Errorf("%d input events after cancel, want 0", n)
	}
	if len(rep.stopped) != 1 || rep.stopped[0] != nil {
		t.Errorf("reported stop errors = %v, want [nil]", rep.stopped)
	}
}
