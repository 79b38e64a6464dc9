package canvas

import "math"

// Zoom is a pair of stepped scale knobs.
//
// The layer knob scales by 1.1 per step and never shrinks below 0.1. The
// global knob applies a finer 1.01 per step on top of it. A turn that leaves
// the resulting scale unchanged is undone, so the knob cannot drift past the
// floor.
type Zoom struct {
	Knob   int
	Global int
}

// MinScale is the smallest scale the layer knob reaches.
const MinScale = 0.1

// Scale returns the combined scale factor.
func (z Zoom) Scale() float64 {
	scale := 1.0
	switch {
	case z.Knob < 0:
		scale = math.Max(math.Pow(1.1, float64(z.Knob)), MinScale)
	case z.Knob > 0:
		scale = math.Pow(1.1, float64(z.Knob))
	}
	if z.Global != 0 {
		scale *= math.Pow(1.01, float64(z.Global))
	}
	return scale
}

// Turn moves the layer knob by delta steps. It reports whether the scale changed.
func (z *Zoom) Turn(delta int) bool {
	old, before := z.Knob, z.Scale()
	z.Knob += delta
	if z.Scale() == before {
		z.Knob = old
		return false
	}
	return true
}

// TurnGlobal moves the global knob by delta steps. It reports whether the
// scale changed.
func (z *Zoom) TurnGlobal(delta int) bool {
	old, before := z.Global, z.Scale()
	z.Global += delta
	if z.Scale() == before {
		z.Global = old
		return false
	}
	return true
}
