package prim

import (
	"fmt"

	"github.com/planarcad/planar/internal/sketch"
)

// Extract decomposes sketch elements into a fresh arena of solver
// primitives. Decomposition per kind:
//
//   - line:      start and end points, one line
//   - hline:     start point plus a derived end at start+(length,0), one line
//   - vline:     start point plus a derived end at start+(0,length), one line
//   - rectangle: four corner points, four edge lines joining them in order
//   - circle:    a center point and one circle
//   - arc:       center, start, and end points (start/end derived from the
//     angles; not forced onto the circle) plus a circle sharing the center,
//     so the radius participates in radius and tangency constraints
//   - spline:    one point per control vertex
//
// Returns an error for an element kind it does not know, which indicates
// model/extraction drift rather than bad user input.
func Extract(elements []sketch.Element) (*Arena, error) {
	a := NewArena()
	for _, e := range elements {
		if err := extractElement(a, e); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func extractElement(a *Arena, e sketch.Element) error {
	switch e.Kind {
	case sketch.KindLine:
		p1 := a.AddPoint(pref(e.ID, sketch.RoleStart, 0), e.Start)
		p2 := a.AddPoint(pref(e.ID, sketch.RoleEnd, 0), e.End)
		a.AddLine(sketch.LineRef{Element: e.ID}, p1, p2)

	case sketch.KindHLine:
		p1 := a.AddPoint(pref(e.ID, sketch.RoleStart, 0), e.Start)
		p2 := a.AddPoint(pref(e.ID, sketch.RoleEnd, 0), e.HLineEnd())
		a.AddLine(sketch.LineRef{Element: e.ID}, p1, p2)

	case sketch.KindVLine:
		p1 := a.AddPoint(pref(e.ID, sketch.RoleStart, 0), e.Start)
		p2 := a.AddPoint(pref(e.ID, sketch.RoleEnd, 0), e.VLineEnd())
		a.AddLine(sketch.LineRef{Element: e.ID}, p1, p2)

	case sketch.KindRectangle:
		var corners [4]PointHandle
		for i := 0; i < 4; i++ {
			corners[i] = a.AddPoint(pref(e.ID, sketch.RoleCorner, i), e.RectangleCorner(i))
		}
		for i := 0; i < 4; i++ {
			a.AddLine(sketch.LineRef{Element: e.ID, Index: i}, corners[i], corners[(i+1)%4])
		}

	case sketch.KindCircle:
		center := a.AddPoint(pref(e.ID, sketch.RoleCenter, 0), e.Center)
		a.AddCircle(sketch.CircleRef{Element: e.ID}, center, e.Radius)

	case sketch.KindArc:
		center := a.AddPoint(pref(e.ID, sketch.RoleCenter, 0), e.Center)
		a.AddPoint(pref(e.ID, sketch.RoleStart, 0), e.ArcStart())
		a.AddPoint(pref(e.ID, sketch.RoleEnd, 0), e.ArcEnd())
		a.AddCircle(sketch.CircleRef{Element: e.ID}, center, e.Radius)

	case sketch.KindSpline:
		for i, c := range e.Controls {
			a.AddPoint(pref(e.ID, sketch.RoleControl, i), c)
		}

	default:
		return fmt.Errorf("extract: unknown element kind %q (element %q)", e.Kind, e.ID)
	}
	return nil
}

func pref(owner string, role sketch.Role, index int) sketch.PointRef {
	return sketch.PointRef{Element: owner, Role: role, Index: index}
}
