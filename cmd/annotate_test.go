package cmd

import (
	"image"
	"image/color"
	"testing"

	"github.com/mj1618/winmatch/internal/imaging"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/session"
	"github.com/mj1618/winmatch/internal/templates"
)

func TestDrawRectangle_Clamped(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}
	drawRectangle(img, -5, 2, 4, 20, red)

	if img.RGBAAt(0, 2) != red || img.RGBAAt(3, 9) != red {
		t.Error("clamped edges not drawn")
	}
	if img.RGBAAt(1, 5) == red {
		t.Error("rectangle interior should stay empty")
	}
}

func TestDrawRectangle_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	drawRectangle(img, 20, 20, 30, 30, color.White)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("rectangle outside the image touched pixels")
		}
	}
}

func TestAnnotateSnapshot_DoesNotModifyFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 60, 60))
	snap := &session.Snapshot{
		Frame: frame,
		Results: []session.TemplateScore{{
			Template:   &templates.Template{Name: "ok", Luma: imaging.NewLuma(8, 6)},
			MatchEvent: session.MatchEvent{Location: image.Pt(10, 40), Decision: match.Confident, Target: image.Pt(14, 43)},
		}},
	}
	img := annotateSnapshot(snap)

	if img.RGBAAt(10, 40) != confidentBox {
		t.Errorf("box corner = %v, want %v", img.RGBAAt(10, 40), confidentBox)
	}
	if img.RGBAAt(14, 43) != confidentBox {
		t.Error("click target not marked")
	}
	for _, v := range frame.Pix {
		if v != 0 {
			t.Fatal("annotation drew on the captured frame")
		}
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 40))
	if got := scaleImage(src, 1.0); got != image.Image(src) {
		t.Error("scale 1.0 should return the image unchanged")
	}
	if b := scaleImage(src, 0.5).Bounds(); b.Dx() != 50 || b.Dy() != 20 {
		t.Errorf("scaled bounds = %v", b)
	}
}

func TestEncodeImage_Formats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, f := range []string{"png", "jpg", "JPEG"} {
		if _, err := encodeImage(img, f, 80); err != nil {
			t.Errorf("encode %s: %v", f, err)
		}
	}
	if _, err := encodeImage(img, "gif", 80); err == nil {
		t.Error("expected error for gif")
	}
	if _, err := encodeImage(img, "jpg", 0); err == nil {
		t.Error("expected error for quality 0")
	}
}
