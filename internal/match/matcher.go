// Package match computes sum-of-squared-differences similarity surfaces
// between luminance rasters and classifies their minima.
package match

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/mj1618/winmatch/internal/imaging"
	"golang.org/x/sync/errgroup"
)

// ErrTemplateTooLarge is returned when a template does not fit inside the frame.
var ErrTemplateTooLarge = errors.New("template larger than frame")

// Surface holds one SSD score per alignment offset, row-major.
type Surface struct {
	Width  int
	Height int
	Values []float32
}

// At returns the score for the template's top-left corner at (x, y).
func (s *Surface) At(x, y int) float32 {
	return s.Values[y*s.Width+x]
}

// Extremes are the global minimum and maximum of a surface with their
// locations. Ties resolve to the first offset in row-major order.
type Extremes struct {
	MinValue    float32
	MaxValue    float32
	MinLocation image.Point
	MaxLocation image.Point
}

// Extremes scans the surface once.
func (s *Surface) Extremes() Extremes {
	e := Extremes{MinValue: s.Values[0], MaxValue: s.Values[0]}
	for i, v := range s.Values {
		if v < e.MinValue {
			e.MinValue = v
			e.MinLocation = image.Pt(i%s.Width, i/s.Width)
		}
		if v > e.MaxValue {
			e.MaxValue = v
			e.MaxLocation = image.Pt(i%s.Width, i/s.Width)
		}
	}
	return e
}

// Result is the best alignment of one template against one frame.
// Lower Score means a stronger match; 0 is exact.
type Result struct {
	Score    float64     `yaml:"score"    json:"score"`
	Location image.Point `yaml:"location" json:"location"`
}

// Matcher computes SSD surfaces. Rows of the surface are split across
// Workers goroutines; the call still blocks until the full surface is ready.
type Matcher struct {
	Workers int
}

// NewMatcher returns a matcher using one worker per CPU.
func NewMatcher() *Matcher {
	return &Matcher{Workers: runtime.GOMAXPROCS(0)}
}

// Surface computes the SSD score for every offset where tpl fits inside frame.
// The surface is (frameW-tplW+1) × (frameH-tplH+1).
func (m *Matcher) Surface(frame, tpl *imaging.Luma) (*Surface, error) {
	if tpl.Width == 0 || tpl.Height == 0 {
		return nil, fmt.Errorf("empty template (%dx%d)", tpl.Width, tpl.Height)
	}
	if tpl.Width > frame.Width || tpl.Height > frame.Height {
		return nil, fmt.Errorf("%w: template %dx%d, frame %dx%d",
			ErrTemplateTooLarge, tpl.Width, tpl.Height, frame.Width, frame.Height)
	}

	s := &Surface{
		Width:  frame.Width - tpl.Width + 1,
		Height: frame.Height - tpl.Height + 1,
	}
	s.Values = make([]float32, s.Width*s.Height)

	workers := m.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for y := 0; y < s.Height; y++ {
		g.Go(func() error {
			row := s.Values[y*s.Width : (y+1)*s.Width]
			for x := range row {
				row[x] = float32(ssdAt(frame, tpl, x, y))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// Match returns the minimum of the SSD surface and its location.
func (m *Matcher) Match(frame, tpl *imaging.Luma) (Result, error) {
	s, err := m.Surface(frame, tpl)
	if err != nil {
		return Result{}, err
	}
	e := s.Extremes()
	return Result{Score: float64(e.MinValue), Location: e.MinLocation}, nil
}

func ssdAt(frame, tpl *imaging.Luma, ox, oy int) float64 {
	var sum float64
	for ty := 0; ty < tpl.Height; ty++ {
		frow := frame.Pix[(oy+ty)*frame.Width+ox : (oy+ty)*frame.Width+ox+tpl.Width]
		trow := tpl.Pix[ty*tpl.Width : (ty+1)*tpl.Width]
		for i, t := range trow {
			d := float64(frow[i]) - float64(t)
			sum += d * d
		}
	}
	return sum
}
