package harness

import (
	"fmt"
	"math"

	"github.com/planarcad/planar/internal/compiler"
	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
	"github.com/planarcad/planar/internal/solver"
)

// evalAssertion checks one assertion against the solved document and
// returns a failure message, or "" when the assertion holds.
//
// Geometric assertions re-extract primitives from the solved elements so
// refs resolve the same way the solver resolves them.
func evalAssertion(i int, a Assertion, doc *sketch.Document, res solver.Result) string {
	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	switch a.Type {
	case AssertConverged:
		if !res.Converged {
			return fmt.Sprintf("assertions[%d]: solver did not converge (iterations=%d residual=%g)",
				i, res.Iterations, res.Residual)
		}
		return ""
	}

	arena, err := prim.Extract(doc.Elements)
	if err != nil {
		return fmt.Sprintf("assertions[%d]: %v", i, err)
	}

	switch a.Type {
	case AssertPointAt:
		pos, msg := resolvePoint(i, arena, a.Point)
		if msg != "" {
			return msg
		}
		if math.Abs(pos.X-a.X) > tol || math.Abs(pos.Y-a.Y) > tol {
			return fmt.Sprintf("assertions[%d]: point %s at (%g, %g), want (%g, %g) within %g",
				i, a.Point, pos.X, pos.Y, a.X, a.Y, tol)
		}

	case AssertDistanceBetween:
		p1, msg := resolvePoint(i, arena, a.Points[0])
		if msg != "" {
			return msg
		}
		p2, msg := resolvePoint(i, arena, a.Points[1])
		if msg != "" {
			return msg
		}
		d := p1.Distance(p2)
		if math.Abs(d-a.Value) > tol {
			return fmt.Sprintf("assertions[%d]: distance %s to %s is %g, want %g within %g",
				i, a.Points[0], a.Points[1], d, a.Value, tol)
		}

	case AssertRadiusAtLeast:
		ref, err := compiler.ParseCircleRef(a.Circle)
		if err != nil {
			return fmt.Sprintf("assertions[%d]: %v", i, err)
		}
		h, ok := arena.LookupCircle(ref)
		if !ok {
			return fmt.Sprintf("assertions[%d]: no circle %q in solved document", i, a.Circle)
		}
		r := arena.Circles[h].Radius
		if r < a.Value-tol {
			return fmt.Sprintf("assertions[%d]: radius of %s is %g, want at least %g",
				i, a.Circle, r, a.Value)
		}
	}
	return ""
}

// resolvePoint parses a point ref string and looks it up in the arena.
func resolvePoint(i int, arena *prim.Arena, s string) (geom.Vec2, string) {
	ref, err := compiler.ParsePointRef(s)
	if err != nil {
		return geom.Vec2{}, fmt.Sprintf("assertions[%d]: %v", i, err)
	}
	h, ok := arena.LookupPoint(ref)
	if !ok {
		return geom.Vec2{}, fmt.Sprintf("assertions[%d]: no point %q in solved document", i, s)
	}
	return arena.PointPos(h), ""
}
