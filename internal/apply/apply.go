// Package apply writes solved primitive positions back onto sketch
// elements, recomputing each kind's derived fields. It is the inverse of
// extraction, defensive about numeric garbage: a NaN coordinate never
// reaches the sketch - the element keeps its pre-solve value for that
// field.
package apply

import (
	"math"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

// Apply reconstructs every element from the solved arena and returns the
// updated slice. Elements whose primitives are missing from the arena
// (which extraction never produces, but a stale arena could) are returned
// unchanged. The input slice is not modified.
func Apply(elements []sketch.Element, arena *prim.Arena) []sketch.Element {
	out := make([]sketch.Element, len(elements))
	for i, e := range elements {
		out[i] = applyElement(e, arena)
	}
	return out
}

func applyElement(e sketch.Element, arena *prim.Arena) sketch.Element {
	switch e.Kind {
	case sketch.KindLine:
		if p, ok := solvedPoint(arena, e.ID, sketch.RoleStart, 0); ok {
			e.Start = fallbackVec(p, e.Start)
		}
		if p, ok := solvedPoint(arena, e.ID, sketch.RoleEnd, 0); ok {
			e.End = fallbackVec(p, e.End)
		}

	case sketch.KindHLine:
		start, okStart := solvedPoint(arena, e.ID, sketch.RoleStart, 0)
		end, okEnd := solvedPoint(arena, e.ID, sketch.RoleEnd, 0)
		if okStart {
			e.Start = fallbackVec(start, e.Start)
		}
		if okStart && okEnd {
			// Signed length along the locked axis. Any perpendicular
			// offset the solve produced is discarded.
			e.Length = fallback(end.X-e.Start.X, e.Length)
		}

	case sketch.KindVLine:
		start, okStart := solvedPoint(arena, e.ID, sketch.RoleStart, 0)
		end, okEnd := solvedPoint(arena, e.ID, sketch.RoleEnd, 0)
		if okStart {
			e.Start = fallbackVec(start, e.Start)
		}
		if okStart && okEnd {
			e.Length = fallback(end.Y-e.Start.Y, e.Length)
		}

	case sketch.KindRectangle:
		// The rectangle stays axis-aligned: the origin corner anchors it
		// and the adjacent corners set width and height. A solve that
		// sheared the corner loop is flattened back onto the axes.
		c0, ok0 := solvedPoint(arena, e.ID, sketch.RoleCorner, 0)
		c1, ok1 := solvedPoint(arena, e.ID, sketch.RoleCorner, 1)
		c3, ok3 := solvedPoint(arena, e.ID, sketch.RoleCorner, 3)
		if ok0 {
			e.Origin = fallbackVec(c0, e.Origin)
		}
		if ok0 && ok1 {
			e.Width = fallback(c1.X-e.Origin.X, e.Width)
		}
		if ok0 && ok3 {
			e.Height = fallback(c3.Y-e.Origin.Y, e.Height)
		}

	case sketch.KindCircle:
		if c, ok := solvedCircle(arena, e.ID); ok {
			e.Center = fallbackVec(arena.PointPos(c.Center), e.Center)
			e.Radius = fallback(c.Radius, e.Radius)
		}

	case sketch.KindArc:
		c, okCircle := solvedCircle(arena, e.ID)
		if okCircle {
			e.Center = fallbackVec(arena.PointPos(c.Center), e.Center)
			e.Radius = fallback(c.Radius, e.Radius)
		}
		// Angles follow the solved start/end points. If a point crossed
		// the center during the solve this flips the sweep direction;
		// there is no way to tell intent apart from that here.
		if p, ok := solvedPoint(arena, e.ID, sketch.RoleStart, 0); ok {
			e.StartAngle = fallback(p.Sub(e.Center).Angle(), e.StartAngle)
		}
		if p, ok := solvedPoint(arena, e.ID, sketch.RoleEnd, 0); ok {
			e.EndAngle = fallback(p.Sub(e.Center).Angle(), e.EndAngle)
		}

	case sketch.KindSpline:
		controls := make([]geom.Vec2, len(e.Controls))
		copy(controls, e.Controls)
		for i := range controls {
			if p, ok := solvedPoint(arena, e.ID, sketch.RoleControl, i); ok {
				controls[i] = fallbackVec(p, controls[i])
			}
		}
		e.Controls = controls
	}
	return e
}

func solvedPoint(arena *prim.Arena, owner string, role sketch.Role, index int) (geom.Vec2, bool) {
	h, ok := arena.LookupPoint(sketch.PointRef{Element: owner, Role: role, Index: index})
	if !ok {
		return geom.Vec2{}, false
	}
	return arena.PointPos(h), true
}

func solvedCircle(arena *prim.Arena, owner string) (prim.Circle, bool) {
	h, ok := arena.LookupCircle(sketch.CircleRef{Element: owner})
	if !ok {
		return prim.Circle{}, false
	}
	return arena.Circles[h], true
}

// fallback keeps the pre-solve value when the solved one is NaN.
func fallback(solved, previous float64) float64 {
	if math.IsNaN(solved) {
		return previous
	}
	return solved
}

// fallbackVec applies the NaN fallback per coordinate, so one bad axis
// does not discard the other.
func fallbackVec(solved, previous geom.Vec2) geom.Vec2 {
	return geom.V(fallback(solved.X, previous.X), fallback(solved.Y, previous.Y))
}
