package cmd

import (
	"bytes"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/platform/fake"
)

func init() {
	color.NoColor = true
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling
// test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func noiseFrame(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = uint8(rng.Intn(256))
		}
	}
	return img
}

// newFixture returns a fake desktop with a "Fantasy Game" window whose frame
// contains the fight profile's only template at (20, 10).
func newFixture(t *testing.T) (*config.Config, *fake.Desktop) {
	t.Helper()
	res := t.TempDir()
	dir := filepath.Join(res, "fight")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	frame := noiseFrame(48, 32, 7)
	f, err := os.Create(filepath.Join(dir, "button.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, frame.SubImage(image.Rect(20, 10, 28, 16))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	d := fake.New()
	d.AddWindow(platform.Window{Handle: 0x10, Title: "Editor"})
	d.AddWindow(platform.Window{Handle: 0x20, Title: "Fantasy Game", Client: platform.Bounds{X: 100, Y: 50, Width: 48, Height: 32}})
	d.SetFrames(0x20, frame)

	cfg, err := config.Parse([]byte(`{
		"cfgs": [{"cmd": "fight", "alias": "Fight Club", "window_name": "Fantasy", "match_pic_path": "fight", "interval_ms": 1}]
	}`), config.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ResDir = res
	return cfg, d
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
