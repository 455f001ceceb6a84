// Package geometry contains the pure world-space math used by the mind map editor.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// GoldenAngle is the angular step of the placement spiral, π(3−√5).
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance returns the euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// DistPointToSeg returns the distance from p to the segment ab.
func DistPointToSeg(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := Clamp(r2.Dot(r2.Sub(p, a), ab)/lenSq, 0, 1)
	closest := r2.Add(a, r2.Scale(t, ab))
	return Distance(p, closest)
}

// PointInRect reports whether p lies inside the axis-aligned box of the given
// center and size. Rounded corners are a rendering detail and are ignored.
func PointInRect(p, center, size r2.Vec) bool {
	return math.Abs(p.X-center.X) <= size.X/2 &&
		math.Abs(p.Y-center.Y) <= size.Y/2
}

// BoundingRadius returns the radius of the circle enclosing a box of the given size.
func BoundingRadius(size r2.Vec) float64 {
	return math.Hypot(size.X, size.Y) / 2
}

// SpiralPoint returns the i-th candidate of an outward golden-angle search
// around origin. The radius starts at base and grows by step every `every`
// iterations; the angle starts at startAngle.
func SpiralPoint(origin r2.Vec, i int, startAngle, base, step float64, every int) r2.Vec {
	if every <= 0 {
		every = 1
	}
	angle := startAngle + float64(i)*GoldenAngle
	radius := base + float64(i/every)*step
	return r2.Add(origin, r2.Vec{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius})
}

// Rect is an axis-aligned rectangle with Min <= Max on both axes.
type Rect struct {
	Min, Max r2.Vec
}

// RectFromPoints builds a normalised rectangle spanning two corner points.
func RectFromPoints(a, b r2.Vec) Rect {
	return Rect{
		Min: r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Contains checks if a point is within the rectangle, edges included.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Size returns the width and height of the rectangle.
func (r Rect) Size() r2.Vec {
	return r2.Sub(r.Max, r.Min)
}
