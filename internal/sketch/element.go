package sketch

import (
	"math"

	"github.com/planarcad/planar/internal/geom"
)

// ElementKind discriminates the element union.
type ElementKind string

const (
	KindLine      ElementKind = "line"
	KindHLine     ElementKind = "hline"
	KindVLine     ElementKind = "vline"
	KindRectangle ElementKind = "rectangle"
	KindCircle    ElementKind = "circle"
	KindArc       ElementKind = "arc"
	KindSpline    ElementKind = "spline"
)

// ValidElementKinds defines the allowed element kinds.
var ValidElementKinds = map[ElementKind]bool{
	KindLine:      true,
	KindHLine:     true,
	KindVLine:     true,
	KindRectangle: true,
	KindCircle:    true,
	KindArc:       true,
	KindSpline:    true,
}

// Element is one sketch element. Kind selects which variant fields are
// meaningful; the rest stay at their zero values.
//
// Variant fields by kind:
//   - line:      Start, End
//   - hline:     Start, Length (signed, along +X)
//   - vline:     Start, Length (signed, along +Y)
//   - rectangle: Origin, Width, Height (axis-aligned)
//   - circle:    Center, Radius
//   - arc:       Center, Radius, StartAngle, EndAngle (radians, CCW)
//   - spline:    Controls
type Element struct {
	ID   string      `json:"id" yaml:"id"`
	Kind ElementKind `json:"kind" yaml:"kind"`

	Start  geom.Vec2 `json:"start,omitempty" yaml:"start,omitempty"`
	End    geom.Vec2 `json:"end,omitempty" yaml:"end,omitempty"`
	Length float64   `json:"length,omitempty" yaml:"length,omitempty"`

	Origin geom.Vec2 `json:"origin,omitempty" yaml:"origin,omitempty"`
	Width  float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64   `json:"height,omitempty" yaml:"height,omitempty"`

	Center     geom.Vec2 `json:"center,omitempty" yaml:"center,omitempty"`
	Radius     float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
	StartAngle float64   `json:"start_angle,omitempty" yaml:"start_angle,omitempty"`
	EndAngle   float64   `json:"end_angle,omitempty" yaml:"end_angle,omitempty"`

	Controls []geom.Vec2 `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// HLineEnd returns the derived end point of an hline.
func (e Element) HLineEnd() geom.Vec2 {
	return geom.V(e.Start.X+e.Length, e.Start.Y)
}

// VLineEnd returns the derived end point of a vline.
func (e Element) VLineEnd() geom.Vec2 {
	return geom.V(e.Start.X, e.Start.Y+e.Length)
}

// RectangleCorner returns corner i of a rectangle, counted counterclockwise
// from the origin corner: 0 = origin, 1 = origin+(w,0), 2 = origin+(w,h),
// 3 = origin+(0,h).
func (e Element) RectangleCorner(i int) geom.Vec2 {
	switch i {
	case 0:
		return e.Origin
	case 1:
		return geom.V(e.Origin.X+e.Width, e.Origin.Y)
	case 2:
		return geom.V(e.Origin.X+e.Width, e.Origin.Y+e.Height)
	case 3:
		return geom.V(e.Origin.X, e.Origin.Y+e.Height)
	}
	return geom.Vec2{}
}

// ArcPoint returns the point on an arc's circle at the given angle.
func (e Element) ArcPoint(angle float64) geom.Vec2 {
	return geom.V(
		e.Center.X+e.Radius*math.Cos(angle),
		e.Center.Y+e.Radius*math.Sin(angle),
	)
}

// ArcStart returns the arc's start point, derived from center, radius, and
// start angle. The start point is not forced onto the circle by extraction;
// a coincidence constraint must be added if that invariant matters.
func (e Element) ArcStart() geom.Vec2 {
	return e.ArcPoint(e.StartAngle)
}

// ArcEnd returns the arc's end point.
func (e Element) ArcEnd() geom.Vec2 {
	return e.ArcPoint(e.EndAngle)
}
