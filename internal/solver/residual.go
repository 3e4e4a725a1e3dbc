package solver

import (
	"math"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

// degreesPerRadian converts angular residuals (computed in degrees) back
// into radians before stiffness scaling.
const degreesPerRadian = 57.3

// system holds one solve's live state: the variable vector, the bound
// constraints, and the variable layout metadata.
type system struct {
	arena    *prim.Arena
	bindings []binding
	p        Params

	np      int       // point count; radii live at 2*np + circle index
	x       []float64 // (x0, y0, x1, y1, ..., r0, r1, ...)
	fixed   []bool    // per variable
	scratch []float64 // residual buffer reused by finite differencing
}

func newSystem(a *prim.Arena, bindings []binding, p Params) *system {
	np := len(a.Points)
	n := 2*np + len(a.Circles)

	s := &system{
		arena:    a,
		bindings: bindings,
		p:        p,
		np:       np,
		x:        make([]float64, n),
		fixed:    make([]bool, n),
	}
	for i, pt := range a.Points {
		s.x[2*i] = pt.Pos.X
		s.x[2*i+1] = pt.Pos.Y
		if pt.Fixed {
			s.fixed[2*i] = true
			s.fixed[2*i+1] = true
		}
	}
	for j, c := range a.Circles {
		s.x[2*np+j] = c.Radius
	}
	return s
}

// pos reads a point's live position from the state vector.
func (s *system) pos(h prim.PointHandle) geom.Vec2 {
	return geom.V(s.x[2*int(h)], s.x[2*int(h)+1])
}

// radius reads a circle's live radius from the state vector.
func (s *system) radius(h prim.CircleHandle) float64 {
	return s.x[2*s.np+int(h)]
}

// center reads a circle's live center position.
func (s *system) center(h prim.CircleHandle) geom.Vec2 {
	return s.pos(s.arena.Circles[h].Center)
}

// lineEnds reads a line's live endpoints.
func (s *system) lineEnds(h prim.LineHandle) (geom.Vec2, geom.Vec2) {
	l := s.arena.Lines[h]
	return s.pos(l.P1), s.pos(l.P2)
}

// chooseModes freezes the internal/external branch of every two-circle
// relation based on the current state. Called once per iteration, before
// any residual evaluation, so the residual layout stays constant across
// the finite differences of that iteration.
func (s *system) chooseModes() {
	for i := range s.bindings {
		b := &s.bindings[i]
		if len(b.circles) != 2 {
			continue
		}
		switch b.c.Type {
		case sketch.Distance:
			s.chooseDistanceMode(b)
		case sketch.Tangent:
			s.chooseTangentMode(b)
		}
	}
}

func (s *system) chooseDistanceMode(b *binding) {
	d := s.center(b.circles[0]).Distance(s.center(b.circles[1]))
	r1, r2 := s.radius(b.circles[0]), s.radius(b.circles[1])
	v := b.c.Val()

	extErr := math.Abs(d - (r1 + r2) - v)
	intErr := math.Abs(math.Abs(r1-r2) - v)
	if intErr < extErr {
		b.mode = modeInternal
	} else {
		b.mode = modeExternal
	}
}

func (s *system) chooseTangentMode(b *binding) {
	r1, r2 := s.radius(b.circles[0]), s.radius(b.circles[1])
	if math.Abs(r1-r2) < 0.001 {
		// Internal tangency of equal radii degenerates to the same
		// circle; fall back to concentricity.
		b.mode = modeConcentric
		return
	}
	d := s.center(b.circles[0]).Distance(s.center(b.circles[1]))
	if math.Abs(d-math.Abs(r1-r2)) < math.Abs(d-(r1+r2)) {
		b.mode = modeInternal
	} else {
		b.mode = modeExternal
	}
}

// residuals evaluates every constraint against the current state vector,
// appending into dst (reused across calls to avoid allocation).
func (s *system) residuals(dst []float64) []float64 {
	dst = dst[:0]
	for i := range s.bindings {
		dst = s.appendResiduals(dst, &s.bindings[i])
	}
	return dst
}

func (s *system) appendResiduals(dst []float64, b *binding) []float64 {
	switch b.c.Type {
	case sketch.Horizontal:
		p1, p2 := s.selectorEnds(b)
		return append(dst, p2.Y-p1.Y)

	case sketch.Vertical:
		p1, p2 := s.selectorEnds(b)
		return append(dst, p2.X-p1.X)

	case sketch.Coincident:
		return s.appendCoincident(dst, b)

	case sketch.Distance:
		return s.appendDistance(dst, b)

	case sketch.Radius:
		return append(dst, s.radius(b.circles[0])-b.c.Val())

	case sketch.Angle:
		return s.appendAngle(dst, b)

	case sketch.Parallel:
		v1, v2, ok := s.lineVectors(b)
		if !ok {
			return append(dst, 0)
		}
		sin := v1.Cross(v2) / (v1.Length() * v2.Length())
		return append(dst, sin*s.p.AngularStiffness)

	case sketch.Perpendicular:
		v1, v2, ok := s.lineVectors(b)
		if !ok {
			return append(dst, 0)
		}
		cos := v1.Dot(v2) / (v1.Length() * v2.Length())
		return append(dst, cos*s.p.AngularStiffness)

	case sketch.EqualLength:
		a1, a2 := s.lineEnds(b.lines[0])
		b1, b2 := s.lineEnds(b.lines[1])
		return append(dst, a1.Distance(a2)-b1.Distance(b2))

	case sketch.Tangent:
		return s.appendTangent(dst, b)

	case sketch.Midpoint:
		p := s.pos(b.points[0])
		l1, l2 := s.lineEnds(b.lines[0])
		mid := l1.Add(l2).Scale(0.5)
		return append(dst, p.X-mid.X, p.Y-mid.Y)

	case sketch.Concentric:
		c1, c2 := s.center(b.circles[0]), s.center(b.circles[1])
		return append(dst, c2.X-c1.X, c2.Y-c1.Y)

	case sketch.Fixed:
		// Enforced structurally: fixed variables never receive updates.
		return dst
	}
	return dst
}

// selectorEnds returns the two positions a horizontal/vertical constraint
// relates: either the two referenced points or the line's endpoints.
func (s *system) selectorEnds(b *binding) (geom.Vec2, geom.Vec2) {
	if len(b.points) == 2 {
		return s.pos(b.points[0]), s.pos(b.points[1])
	}
	return s.lineEnds(b.lines[0])
}

func (s *system) appendCoincident(dst []float64, b *binding) []float64 {
	switch {
	case len(b.points) == 2:
		p1, p2 := s.pos(b.points[0]), s.pos(b.points[1])
		return append(dst, p2.X-p1.X, p2.Y-p1.Y)

	case len(b.points) == 1 && len(b.lines) == 1:
		l1, l2 := s.lineEnds(b.lines[0])
		d, ok := geom.SignedDistanceToLine(s.pos(b.points[0]), l1, l2)
		if !ok {
			return append(dst, 0)
		}
		return append(dst, d)

	case len(b.lines) == 1 && len(b.circles) == 1:
		l1, l2 := s.lineEnds(b.lines[0])
		d, ok := geom.SignedDistanceToLine(s.center(b.circles[0]), l1, l2)
		if !ok {
			return append(dst, 0)
		}
		return append(dst, d)

	case len(b.points) == 1 && len(b.circles) == 1:
		p := s.pos(b.points[0])
		c := s.center(b.circles[0])
		return append(dst, p.X-c.X, p.Y-c.Y)

	case len(b.circles) == 2:
		c1, c2 := s.center(b.circles[0]), s.center(b.circles[1])
		return append(dst, c2.X-c1.X, c2.Y-c1.Y)
	}
	return dst
}

func (s *system) appendDistance(dst []float64, b *binding) []float64 {
	v := b.c.Val()
	switch {
	case len(b.lines) == 1 && len(b.circles) == 0:
		p1, p2 := s.lineEnds(b.lines[0])
		return append(dst, p1.Distance(p2)-v)

	case len(b.lines) == 1 && len(b.circles) == 1:
		l1, l2 := s.lineEnds(b.lines[0])
		d, ok := geom.SignedDistanceToLine(s.center(b.circles[0]), l1, l2)
		if !ok {
			return append(dst, 0)
		}
		return append(dst, math.Abs(d)-s.radius(b.circles[0])-v)

	case len(b.circles) == 2:
		c1, c2 := s.center(b.circles[0]), s.center(b.circles[1])
		r1, r2 := s.radius(b.circles[0]), s.radius(b.circles[1])
		if b.mode == modeInternal {
			// Internal clearance rides on concentric alignment; the gap
			// lives in the radii.
			return append(dst,
				c2.X-c1.X,
				c2.Y-c1.Y,
				math.Abs(r1-r2)-v)
		}
		return append(dst, c1.Distance(c2)-(r1+r2)-v)

	case len(b.points) == 2:
		return append(dst, s.pos(b.points[0]).Distance(s.pos(b.points[1]))-v)
	}
	return dst
}

func (s *system) appendAngle(dst []float64, b *binding) []float64 {
	v := b.c.Val()
	if len(b.lines) == 1 {
		p1, p2 := s.lineEnds(b.lines[0])
		d := p2.Sub(p1)
		if d.Length() < geom.Epsilon {
			return append(dst, 0)
		}
		deg := geom.Degrees(d.Angle())
		return append(dst, (deg-v)*s.p.AngularStiffness/degreesPerRadian)
	}

	v1, v2, ok := s.lineVectors(b)
	if !ok {
		return append(dst, 0)
	}
	cos := v1.Dot(v2) / (v1.Length() * v2.Length())
	cos = math.Max(-1, math.Min(1, cos))
	deg := geom.Degrees(math.Acos(cos))
	return append(dst, (deg-v)*s.p.AngularStiffness/degreesPerRadian)
}

func (s *system) appendTangent(dst []float64, b *binding) []float64 {
	switch {
	case len(b.lines) == 1 && len(b.circles) == 1:
		l1, l2 := s.lineEnds(b.lines[0])
		d, ok := geom.SignedDistanceToLine(s.center(b.circles[0]), l1, l2)
		if !ok {
			return append(dst, 0)
		}
		return append(dst, math.Abs(d)-s.radius(b.circles[0]))

	case len(b.circles) == 2:
		c1, c2 := s.center(b.circles[0]), s.center(b.circles[1])
		r1, r2 := s.radius(b.circles[0]), s.radius(b.circles[1])
		switch b.mode {
		case modeConcentric:
			return append(dst, c2.X-c1.X, c2.Y-c1.Y)
		case modeInternal:
			return append(dst, c1.Distance(c2)-math.Abs(r1-r2))
		default:
			return append(dst, c1.Distance(c2)-(r1+r2))
		}

	case len(b.points) == 1 && len(b.circles) == 1:
		d := s.pos(b.points[0]).Distance(s.center(b.circles[0]))
		return append(dst, d-s.radius(b.circles[0]))
	}
	return dst
}

// lineVectors returns the direction vectors of a two-line binding, with
// ok=false when either segment is degenerate.
func (s *system) lineVectors(b *binding) (geom.Vec2, geom.Vec2, bool) {
	a1, a2 := s.lineEnds(b.lines[0])
	b1, b2 := s.lineEnds(b.lines[1])
	v1 := a2.Sub(a1)
	v2 := b2.Sub(b1)
	if v1.Length() < geom.Epsilon || v2.Length() < geom.Epsilon {
		return geom.Vec2{}, geom.Vec2{}, false
	}
	return v1, v2, true
}
