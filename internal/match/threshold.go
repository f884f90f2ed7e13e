package match

import (
	"fmt"
	"image"
)

// Thresholds split SSD scores into three bands.
type Thresholds struct {
	// Low is the exclusive upper bound of the confident band.
	Low float64 `yaml:"low" json:"low"`
	// High is the exclusive upper bound of the near band.
	High float64 `yaml:"high" json:"high"`
}

// DefaultThresholds are used when a profile sets none.
var DefaultThresholds = Thresholds{Low: 3.0, High: 8.0}

// Validate checks 0 <= Low < High.
func (t Thresholds) Validate() error {
	if t.Low < 0 {
		return fmt.Errorf("low threshold %g must not be negative", t.Low)
	}
	if t.High <= t.Low {
		return fmt.Errorf("high threshold %g must exceed low threshold %g", t.High, t.Low)
	}
	return nil
}

// Decision is what the loop does with a score.
type Decision int

const (
	// Ignore: score >= High.
	Ignore Decision = iota
	// Near: Low <= score < High. Reported, never acted on.
	Near
	// Confident: score < Low. Exactly one action is dispatched.
	Confident
)

func (d Decision) String() string {
	switch d {
	case Confident:
		return "found"
	case Near:
		return "near"
	default:
		return "ignore"
	}
}

// Classify maps a score to a decision.
func (t Thresholds) Classify(score float64) Decision {
	switch {
	case score < t.Low:
		return Confident
	case score < t.High:
		return Near
	default:
		return Ignore
	}
}

// ClickTarget is the center of a template of the given size placed at loc.
func ClickTarget(loc image.Point, width, height int) image.Point {
	return image.Pt(loc.X+width/2, loc.Y+height/2)
}
