// Package autocon infers implicit constraints when an element is
// committed to a sketch: endpoint coincidence with existing geometry, and
// horizontal/vertical alignment of nearly axis-aligned lines. Inferred
// constraints are indistinguishable from user-declared ones downstream;
// only their origin differs.
package autocon

import (
	"fmt"
	"math"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

const (
	// CoincidenceTolerance is the box (Chebyshev) distance within which
	// two points snap together: |Δx| and |Δy| both at most this many
	// world units.
	CoincidenceTolerance = 5.0

	// AxisAngleTolerance is how far (radians) a line may lean from an
	// axis and still be snapped to it: 5 degrees.
	AxisAngleTolerance = math.Pi / 36

	// MinAxisLength is the shortest segment considered for axis
	// snapping. Short segments have too noisy an angle to trust.
	MinAxisLength = 10.0
)

// Detection is one inferred constraint with its explanation. Description
// is for user feedback only; the solver never reads it.
type Detection struct {
	Constraint  sketch.Constraint
	Description string
}

// Detect inspects a newly committed element against the existing sketch
// and proposes implicit constraints. Only the new element is examined;
// relations among pre-existing elements are never revisited. Proposed
// constraints carry no ID - the caller assigns ids to those it accepts.
//
// Returns an error only if existing geometry fails to extract, which
// indicates a corrupt sketch rather than anything about the new element.
func Detect(newElement sketch.Element, existing []sketch.Element, existingConstraints []sketch.Constraint) ([]Detection, error) {
	others := make([]sketch.Element, 0, len(existing))
	for _, e := range existing {
		if e.ID != newElement.ID {
			others = append(others, e)
		}
	}
	arena, err := prim.Extract(others)
	if err != nil {
		return nil, fmt.Errorf("autoconstrain: %w", err)
	}

	var out []Detection
	out = detectCoincidences(out, newElement, arena, existingConstraints)
	out = detectAxisAlignment(out, newElement, existingConstraints)
	return out, nil
}

// anchorPoints lists the snap points of an element: the named endpoints
// and centers a user expects to attach to. Spline control vertices are
// interior shaping handles, not attachment points, so they are excluded.
func anchorPoints(e sketch.Element) []anchor {
	switch e.Kind {
	case sketch.KindLine:
		return []anchor{
			{ref(e.ID, sketch.RoleStart, 0), e.Start},
			{ref(e.ID, sketch.RoleEnd, 0), e.End},
		}
	case sketch.KindHLine:
		return []anchor{
			{ref(e.ID, sketch.RoleStart, 0), e.Start},
			{ref(e.ID, sketch.RoleEnd, 0), e.HLineEnd()},
		}
	case sketch.KindVLine:
		return []anchor{
			{ref(e.ID, sketch.RoleStart, 0), e.Start},
			{ref(e.ID, sketch.RoleEnd, 0), e.VLineEnd()},
		}
	case sketch.KindRectangle:
		out := make([]anchor, 4)
		for i := 0; i < 4; i++ {
			out[i] = anchor{ref(e.ID, sketch.RoleCorner, i), e.RectangleCorner(i)}
		}
		return out
	case sketch.KindCircle:
		return []anchor{{ref(e.ID, sketch.RoleCenter, 0), e.Center}}
	case sketch.KindArc:
		return []anchor{
			{ref(e.ID, sketch.RoleCenter, 0), e.Center},
			{ref(e.ID, sketch.RoleStart, 0), e.ArcStart()},
			{ref(e.ID, sketch.RoleEnd, 0), e.ArcEnd()},
		}
	case sketch.KindSpline:
		return nil
	}
	return nil
}

type anchor struct {
	ref sketch.PointRef
	pos geom.Vec2
}

func ref(owner string, role sketch.Role, index int) sketch.PointRef {
	return sketch.PointRef{Element: owner, Role: role, Index: index}
}

func detectCoincidences(out []Detection, newElement sketch.Element, arena *prim.Arena, existing []sketch.Constraint) []Detection {
	for _, a := range anchorPoints(newElement) {
		for _, p := range arena.Points {
			if a.pos.ChebyshevDistance(p.Pos) > CoincidenceTolerance {
				continue
			}
			if hasCoincidence(existing, out, a.ref, p.Ref) {
				continue
			}
			out = append(out, Detection{
				Constraint: sketch.Constraint{
					Type:   sketch.Coincident,
					Points: []sketch.PointRef{a.ref, p.Ref},
				},
				Description: fmt.Sprintf("%s coincides with %s", a.ref, p.Ref),
			})
		}
	}
	return out
}

// hasCoincidence reports whether an equivalent unordered coincidence
// already exists, either persisted or proposed earlier in this run.
func hasCoincidence(existing []sketch.Constraint, proposed []Detection, a, b sketch.PointRef) bool {
	for _, c := range existing {
		if c.Type == sketch.Coincident && c.SamePointPair(a, b) {
			return true
		}
	}
	for _, d := range proposed {
		if d.Constraint.Type == sketch.Coincident && d.Constraint.SamePointPair(a, b) {
			return true
		}
	}
	return false
}

// detectAxisAlignment snaps a nearly horizontal or vertical line to its
// axis. Only free-angle lines qualify: hlines and vlines are axis-locked
// by construction, and rectangle edges are squared by their corners.
func detectAxisAlignment(out []Detection, e sketch.Element, existing []sketch.Constraint) []Detection {
	if e.Kind != sketch.KindLine {
		return out
	}
	d := e.End.Sub(e.Start)
	if d.Length() < MinAxisLength {
		return out
	}
	if hasAxisConstraint(existing, e.ID) {
		return out
	}

	angle := d.Angle()
	lineRef := sketch.LineRef{Element: e.ID}

	// Horizontal and vertical snapping are mutually exclusive; with a
	// 5 degree window they cannot both match.
	switch {
	case math.Abs(angle) <= AxisAngleTolerance || math.Abs(math.Abs(angle)-math.Pi) <= AxisAngleTolerance:
		out = append(out, Detection{
			Constraint: sketch.Constraint{
				Type:  sketch.Horizontal,
				Lines: []sketch.LineRef{lineRef},
			},
			Description: fmt.Sprintf("%s snapped horizontal (%.1f deg off axis)", e.ID, geom.Degrees(math.Min(math.Abs(angle), math.Abs(math.Abs(angle)-math.Pi)))),
		})
	case math.Abs(math.Abs(angle)-math.Pi/2) <= AxisAngleTolerance:
		out = append(out, Detection{
			Constraint: sketch.Constraint{
				Type:  sketch.Vertical,
				Lines: []sketch.LineRef{lineRef},
			},
			Description: fmt.Sprintf("%s snapped vertical (%.1f deg off axis)", e.ID, geom.Degrees(math.Abs(math.Abs(angle)-math.Pi/2))),
		})
	}
	return out
}

// hasAxisConstraint reports whether the line already carries a horizontal
// or vertical constraint.
func hasAxisConstraint(constraints []sketch.Constraint, elementID string) bool {
	for _, c := range constraints {
		if c.Type != sketch.Horizontal && c.Type != sketch.Vertical {
			continue
		}
		for _, l := range c.Lines {
			if l.Element == elementID {
				return true
			}
		}
	}
	return false
}
