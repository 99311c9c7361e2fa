package sublayer

import "math"

// OpacityChange describes the drawing override that results from setting a
// sublayer's opacity. Applied is false when the parent cannot take per
// sublayer overrides.
type OpacityChange struct {
	Index        int
	Transparency float64
	Applied      bool
}

// Apply pushes the change to p. It does nothing when the change was not
// applicable.
func (c OpacityChange) Apply(p Parent) {
	if !c.Applied {
		return
	}
	p.SetLayerDrawingOptions(c.Index, DrawingOptions{Transparency: c.Transparency})
}

// Transparency converts opacity in [0,1] to the renderer's transparency in
// [0,100], where 100 is fully transparent.
func Transparency(opacity float64) float64 {
	return (1 - clampOpacity(opacity)) * 100
}

func clampOpacity(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 1
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
