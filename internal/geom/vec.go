// Package geom provides the small set of 2D vector and line helpers shared
// by the extraction, auto-constraint, solver, and write-back packages.
package geom

import "math"

// Epsilon is the magnitude below which a vector or segment is treated as
// degenerate. Formulas that divide by a length guard against it and produce
// a zero contribution instead of Inf/NaN.
const Epsilon = 1e-9

// Vec2 is a 2D point or displacement with float64 coordinates.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V constructs a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Length returns the Euclidean magnitude of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// ChebyshevDistance returns max(|dx|, |dy|), the box distance used for
// coincidence snapping.
func (v Vec2) ChebyshevDistance(o Vec2) float64 {
	return math.Max(math.Abs(v.X-o.X), math.Abs(v.Y-o.Y))
}

// Dot returns the dot product v · o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 2D cross product v × o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Angle returns the angle of v in radians, in (-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// IsNaN reports whether either coordinate is NaN.
func (v Vec2) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y)
}

// LineEquation returns the coefficients (a, b, c) of the implicit line
// a·x + b·y + c = 0 through p1 and p2, normalized so that (a, b) is a unit
// vector. With that normalization a·x + b·y + c is the signed distance from
// (x, y) to the line. Returns ok=false for a degenerate segment.
func LineEquation(p1, p2 Vec2) (a, b, c float64, ok bool) {
	d := p2.Sub(p1)
	n := d.Length()
	if n < Epsilon {
		return 0, 0, 0, false
	}
	a = d.Y / n
	b = -d.X / n
	c = -(a*p1.X + b*p1.Y)
	return a, b, c, true
}

// SignedDistanceToLine returns the signed perpendicular distance from p to
// the infinite line through p1 and p2, and ok=false when the segment is
// degenerate.
func SignedDistanceToLine(p, p1, p2 Vec2) (float64, bool) {
	a, b, c, ok := LineEquation(p1, p2)
	if !ok {
		return 0, false
	}
	return a*p.X + b*p.Y + c, true
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
