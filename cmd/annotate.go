package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/session"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	confidentBox = color.RGBA{R: 0, G: 220, B: 0, A: 255}
	nearBox      = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	ignoreBox    = color.RGBA{R: 255, G: 0, B: 0, A: 160}
	labelColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// annotateSnapshot draws every template's best alignment on a copy of the
// captured frame, labelled with the template name and score.
func annotateSnapshot(snap *session.Snapshot) *image.RGBA {
	img := imageToRGBA(snap.Frame)
	for _, r := range snap.Results {
		x, y := r.Location.X, r.Location.Y
		w, h := r.Template.Width, r.Template.Height

		var c color.Color
		switch r.Decision {
		case match.Confident:
			c = confidentBox
		case match.Near:
			c = nearBox
		default:
			c = ignoreBox
		}
		drawRectangle(img, x, y, x+w, y+h, c)
		if r.Decision == match.Confident {
			drawCross(img, r.Target.X, r.Target.Y, c)
		}
		drawTextWithOutline(img, fmt.Sprintf("%s %.2f", r.Template.Name, r.Score), x+w/2, y-10, labelColor, outlineColor)
	}
	return img
}

// imageToRGBA converts any image to RGBA.
func imageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	x1, y1 = max(x1, bounds.Min.X), max(y1, bounds.Min.Y)
	x2, y2 = min(x2, bounds.Max.X), min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

func drawCross(img *image.RGBA, x, y int, c color.Color) {
	for d := -3; d <= 3; d++ {
		img.Set(x+d, y, c)
		img.Set(x, y+d, c)
	}
}

// drawTextWithOutline draws text centred on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outline color.Color) {
	// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high
	offsetX := x - len(text)*7/2
	offsetY := max(y+13/2, 13)

	drawAt := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawAt(dx, dy, outline)
		}
	}
	drawAt(0, 0, textColor)
}
