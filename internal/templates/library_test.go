package templates

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_FiltersAndNames(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "accept.png"), 4, 3, color.White)
	writeJPEG(t, filepath.Join(dir, "close.jpeg"), 5, 5)
	writePNG(t, filepath.Join(dir, "UPPER.PNG"), 2, 2, color.Black)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"UPPER", "accept", "close"}
	got := lib.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	accept, ok := lib.Get("accept")
	if !ok {
		t.Fatal("accept not loaded")
	}
	if accept.Width != 4 || accept.Height != 3 {
		t.Errorf("accept is %dx%d, want 4x3", accept.Width, accept.Height)
	}
	if accept.At(0, 0) < 0.99 {
		t.Errorf("white template luma = %v, want ~1", accept.At(0, 0))
	}
}

func TestLoad_SkipsUndecodable(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), 2, 2, color.White)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lib.Len())
	}
	if len(lib.Skipped()) != 1 || filepath.Base(lib.Skipped()[0]) != "broken.png" {
		t.Errorf("Skipped() = %v, want [broken.png]", lib.Skipped())
	}
}

func TestLoad_DuplicateStemSingleEntry(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a.jpg"), 3, 3)
	writePNG(t, filepath.Join(dir, "a.png"), 6, 6, color.White)

	lib, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 1 {
		t.Fatalf("Len() = %d, want exactly one entry for stem a", lib.Len())
	}
	a, _ := lib.Get("a")
	if filepath.Base(a.Path) != "a.png" {
		t.Errorf("kept %s, want a.png (lexically last)", a.Path)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	lib, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if lib.Len() != 0 || len(lib.All()) != 0 {
		t.Errorf("expected empty library, got %d", lib.Len())
	}
}
