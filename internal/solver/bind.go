package solver

import (
	"fmt"

	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

// circleMode selects which branch of a two-circle relation is active this
// iteration. Frozen per iteration so finite differencing sees a constant
// residual layout.
type circleMode int

const (
	modeUnset circleMode = iota
	modeExternal
	modeInternal
	modeConcentric
)

// binding is a constraint resolved against one arena: refs replaced by
// handles, selector legality checked up front so residual evaluation
// cannot fail mid-iteration.
type binding struct {
	c       sketch.Constraint
	points  []prim.PointHandle
	lines   []prim.LineHandle
	circles []prim.CircleHandle
	mode    circleMode
}

// bindAll resolves every constraint against the arena. An unresolvable
// ref or an unsupported selector pattern is an error; callers treat it as
// a sketch-level fault, not a solver fault.
func bindAll(a *prim.Arena, constraints []sketch.Constraint) ([]binding, error) {
	bindings := make([]binding, 0, len(constraints))
	for _, c := range constraints {
		b, err := bindOne(a, c)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func bindOne(a *prim.Arena, c sketch.Constraint) (binding, error) {
	b := binding{c: c}

	for _, ref := range c.Points {
		h, ok := a.LookupPoint(ref)
		if !ok {
			return b, fmt.Errorf("constraint %s: unresolved point %s", c.ID, ref)
		}
		b.points = append(b.points, h)
	}
	for _, ref := range c.Lines {
		h, ok := a.LookupLine(ref)
		if !ok {
			return b, fmt.Errorf("constraint %s: unresolved line %s", c.ID, ref)
		}
		b.lines = append(b.lines, h)
	}
	for _, ref := range c.Circles {
		h, ok := a.LookupCircle(ref)
		if !ok {
			return b, fmt.Errorf("constraint %s: unresolved circle %s", c.ID, ref)
		}
		b.circles = append(b.circles, h)
	}

	if !legalSelector(c.Type, len(b.points), len(b.lines), len(b.circles)) {
		return b, fmt.Errorf(
			"constraint %s: %s does not apply to %d point(s), %d line(s), %d circle(s)",
			c.ID, c.Type, len(b.points), len(b.lines), len(b.circles))
	}
	return b, nil
}

// legalSelector encodes which (point, line, circle) reference counts each
// constraint type accepts. The residual switch in residual.go handles
// exactly these combinations.
func legalSelector(t sketch.ConstraintType, np, nl, nc int) bool {
	switch t {
	case sketch.Horizontal, sketch.Vertical:
		return (np == 2 && nl == 0 && nc == 0) || (np == 0 && nl == 1 && nc == 0)
	case sketch.Coincident:
		switch {
		case np == 2 && nl == 0 && nc == 0:
			return true
		case np == 1 && nl == 1 && nc == 0:
			return true
		case np == 0 && nl == 1 && nc == 1:
			return true
		case np == 1 && nl == 0 && nc == 1:
			return true
		case np == 0 && nl == 0 && nc == 2:
			return true
		}
		return false
	case sketch.Distance:
		switch {
		case np == 0 && nl == 1 && nc == 0:
			return true
		case np == 0 && nl == 1 && nc == 1:
			return true
		case np == 0 && nl == 0 && nc == 2:
			return true
		case np == 2 && nl == 0 && nc == 0:
			return true
		}
		return false
	case sketch.Radius:
		return np == 0 && nl == 0 && nc == 1
	case sketch.Angle:
		return np == 0 && (nl == 1 || nl == 2) && nc == 0
	case sketch.Parallel, sketch.Perpendicular, sketch.EqualLength:
		return np == 0 && nl == 2 && nc == 0
	case sketch.Tangent:
		switch {
		case np == 0 && nl == 1 && nc == 1:
			return true
		case np == 0 && nl == 0 && nc == 2:
			return true
		case np == 1 && nl == 0 && nc == 1:
			return true
		}
		return false
	case sketch.Midpoint:
		return np == 1 && nl == 1 && nc == 0
	case sketch.Concentric:
		return np == 0 && nl == 0 && nc == 2
	case sketch.Fixed:
		return (np >= 1 || nc >= 1) && nl == 0
	}
	return false
}

// markFixed flags every point referenced by a FIXED constraint, and the
// center of every circle referenced by one. Fixed points keep their exact
// input coordinates: their normal-equation rows are forced to identity so
// no update ever reaches them.
func markFixed(a *prim.Arena, bindings []binding) {
	for _, b := range bindings {
		if b.c.Type != sketch.Fixed {
			continue
		}
		for _, h := range b.points {
			a.Points[h].Fixed = true
		}
		for _, h := range b.circles {
			a.Points[a.Circles[h].Center].Fixed = true
		}
	}
}
