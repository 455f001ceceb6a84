package editor

import (
	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits.
const (
	MinScale = 0.3
	MaxScale = 3.0
)

// Viewport maps world coordinates to screen pixels: screen = Pan + world*Scale.
type Viewport struct {
	Pan   r2.Vec  `json:"pan"`
	Scale float64 `json:"scale"`
	Size  r2.Vec  `json:"size"` // Screen size in pixels
}

// NewViewport returns a viewport of the given screen size with the world origin centered.
func NewViewport(size r2.Vec) Viewport {
	return Viewport{Pan: r2.Scale(0.5, size), Scale: 1, Size: size}
}

// ToWorld converts a screen point to world coordinates.
func (v Viewport) ToWorld(p r2.Vec) r2.Vec {
	return r2.Scale(1/v.Scale, r2.Sub(p, v.Pan))
}

// ToScreen converts a world point to screen coordinates.
func (v Viewport) ToScreen(p r2.Vec) r2.Vec {
	return r2.Add(v.Pan, r2.Scale(v.Scale, p))
}

// Center returns the world point under the middle of the screen.
func (v Viewport) Center() r2.Vec {
	return v.ToWorld(r2.Scale(0.5, v.Size))
}

// ZoomAt sets the scale, clamped to the zoom limits, keeping the world point
// under screen where it is.
func (v *Viewport) ZoomAt(screen r2.Vec, scale float64) {
	world := v.ToWorld(screen)
	v.Scale = geometry.Clamp(scale, MinScale, MaxScale)
	v.Pan = r2.Sub(screen, r2.Scale(v.Scale, world))
}

// PanBy shifts the view by d screen pixels.
func (v *Viewport) PanBy(d r2.Vec) {
	v.Pan = r2.Add(v.Pan, d)
}

// Resize changes the screen size, keeping the world point at the center of
// the screen where it was. Scale is kept.
func (v *Viewport) Resize(size r2.Vec) {
	v.Pan = r2.Add(v.Pan, r2.Scale(0.5, r2.Sub(size, v.Size)))
	v.Size = size
}

// BringIntoView pans by the smallest amount that puts the world box
// (center, size) at least margin pixels inside the screen, one axis at a
// time. The scale never changes. When the box cannot fit, its top left
// corner wins. Reports whether the pan moved.
func (v *Viewport) BringIntoView(center, size r2.Vec, margin float64) bool {
	half := r2.Scale(0.5, size)
	lo := v.ToScreen(r2.Sub(center, half))
	hi := v.ToScreen(r2.Add(center, half))

	shift := r2.Vec{
		X: axisShift(lo.X, hi.X, v.Size.X, margin),
		Y: axisShift(lo.Y, hi.Y, v.Size.Y, margin),
	}
	if shift == (r2.Vec{}) {
		return false
	}
	v.PanBy(shift)
	return true
}

func axisShift(lo, hi, extent, margin float64) float64 {
	switch {
	case lo < margin:
		return margin - lo
	case hi > extent-margin:
		return max(extent-margin-hi, margin-lo)
	}
	return 0
}
