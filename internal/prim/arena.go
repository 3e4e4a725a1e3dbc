package prim

import (
	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
)

// PointHandle indexes a point in an arena. Handles are only meaningful
// within the arena that allocated them.
type PointHandle int

// LineHandle indexes a line in an arena.
type LineHandle int

// CircleHandle indexes a circle in an arena.
type CircleHandle int

// NoHandle marks an unresolved handle of any kind.
const NoHandle = -1

// Point is one solver point. Pos is the live value the solver updates;
// Fixed excludes it from the free-variable set.
type Point struct {
	Pos   geom.Vec2
	Fixed bool
	Ref   sketch.PointRef // owner identity, for diagnostics and write-back
}

// Line is a straight segment between two arena points.
type Line struct {
	P1, P2 PointHandle
	Ref    sketch.LineRef
}

// Circle couples a center point with a radius. The radius is a free solver
// variable unless constrained, floored at the solver's minimum radius.
type Circle struct {
	Center PointHandle
	Radius float64
	Ref    sketch.CircleRef
}

// Arena holds the primitives of one solve cycle, with allocation tables
// that guarantee each (owner, role, index) appears exactly once.
type Arena struct {
	Points  []Point
	Lines   []Line
	Circles []Circle

	pointIndex  map[sketch.PointRef]PointHandle
	lineIndex   map[sketch.LineRef]LineHandle
	circleIndex map[sketch.CircleRef]CircleHandle
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		pointIndex:  make(map[sketch.PointRef]PointHandle),
		lineIndex:   make(map[sketch.LineRef]LineHandle),
		circleIndex: make(map[sketch.CircleRef]CircleHandle),
	}
}

// AddPoint allocates a point for ref, or returns the existing handle if
// ref was already allocated. The position of an existing point is not
// overwritten.
func (a *Arena) AddPoint(ref sketch.PointRef, pos geom.Vec2) PointHandle {
	if h, ok := a.pointIndex[ref]; ok {
		return h
	}
	h := PointHandle(len(a.Points))
	a.Points = append(a.Points, Point{Pos: pos, Ref: ref})
	a.pointIndex[ref] = h
	return h
}

// AddLine allocates a line between two existing points.
func (a *Arena) AddLine(ref sketch.LineRef, p1, p2 PointHandle) LineHandle {
	if h, ok := a.lineIndex[ref]; ok {
		return h
	}
	h := LineHandle(len(a.Lines))
	a.Lines = append(a.Lines, Line{P1: p1, P2: p2, Ref: ref})
	a.lineIndex[ref] = h
	return h
}

// AddCircle allocates a circle around an existing center point.
func (a *Arena) AddCircle(ref sketch.CircleRef, center PointHandle, radius float64) CircleHandle {
	if h, ok := a.circleIndex[ref]; ok {
		return h
	}
	h := CircleHandle(len(a.Circles))
	a.Circles = append(a.Circles, Circle{Center: center, Radius: radius, Ref: ref})
	a.circleIndex[ref] = h
	return h
}

// LookupPoint resolves a point ref to its handle.
func (a *Arena) LookupPoint(ref sketch.PointRef) (PointHandle, bool) {
	h, ok := a.pointIndex[ref]
	return h, ok
}

// LookupLine resolves a line ref to its handle.
func (a *Arena) LookupLine(ref sketch.LineRef) (LineHandle, bool) {
	h, ok := a.lineIndex[ref]
	return h, ok
}

// LookupCircle resolves a circle ref to its handle.
func (a *Arena) LookupCircle(ref sketch.CircleRef) (CircleHandle, bool) {
	h, ok := a.circleIndex[ref]
	return h, ok
}

// PointPos returns the live position of a point.
func (a *Arena) PointPos(h PointHandle) geom.Vec2 {
	return a.Points[h].Pos
}

// LineEnds returns the live endpoint positions of a line.
func (a *Arena) LineEnds(h LineHandle) (geom.Vec2, geom.Vec2) {
	l := a.Lines[h]
	return a.Points[l.P1].Pos, a.Points[l.P2].Pos
}
