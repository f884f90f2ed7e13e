// Package imaging converts rasters into the single-channel luminance form used
// for template matching.
package imaging

import (
	"image"
	"image/draw"
)

// Luma is a width×height grid of alpha-premultiplied luminance values in [0,1],
// stored row-major.
type Luma struct {
	Width  int
	Height int
	Pix    []float32
}

// NewLuma allocates a zeroed raster.
func NewLuma(width, height int) *Luma {
	return &Luma{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// At returns the value at (x, y).
func (l *Luma) At(x, y int) float32 {
	return l.Pix[y*l.Width+x]
}

// Set stores v at (x, y).
func (l *Luma) Set(x, y int, v float32) {
	l.Pix[y*l.Width+x] = v
}

// Bounds returns the raster rectangle anchored at the origin.
func (l *Luma) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// PixelLuma converts one 8-bit RGBA pixel. Each channel is normalized by 255
// and the weighted luminance is multiplied by alpha, so a transparent pixel is
// always 0.
func PixelLuma(r, g, b, a uint8) float32 {
	red := float32(r) / 255
	green := float32(g) / 255
	blue := float32(b) / 255
	alpha := float32(a) / 255
	return (0.299*red + 0.587*green + 0.114*blue) * alpha
}

// FromRGBA converts a raster whose Pix holds straight (non-premultiplied)
// 8-bit RGBA samples, which is what window captures produce.
func FromRGBA(img *image.RGBA) *Luma {
	b := img.Bounds()
	out := NewLuma(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[off : off+out.Width*4]
		for x := 0; x < out.Width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			out.Pix[y*out.Width+x] = PixelLuma(p[0], p[1], p[2], p[3])
		}
	}
	return out
}

// FromImage converts a decoded image. Colors are first converted to straight
// alpha so the formula sees the same channel values a capture would.
func FromImage(img image.Image) *Luma {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	out := NewLuma(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+out.Width*4]
		for x := 0; x < out.Width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			out.Pix[y*out.Width+x] = PixelLuma(p[0], p[1], p[2], p[3])
		}
	}
	return out
}

// Gray renders the raster as an 8-bit grayscale image for inspection.
func (l *Luma) Gray() *image.Gray {
	g := image.NewGray(l.Bounds())
	for i, v := range l.Pix {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		g.Pix[i] = uint8(v*255 + 0.5)
	}
	return g
}
