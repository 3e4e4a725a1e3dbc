package apply

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

// arenaFor extracts and then nudges geometry as a stand-in for a solve.
func arenaFor(t *testing.T, elements ...sketch.Element) *prim.Arena {
	t.Helper()
	a, err := prim.Extract(elements)
	require.NoError(t, err)
	return a
}

func movePoint(t *testing.T, a *prim.Arena, owner string, role sketch.Role, index int, to geom.Vec2) {
	t.Helper()
	h, ok := a.LookupPoint(sketch.PointRef{Element: owner, Role: role, Index: index})
	require.True(t, ok)
	a.Points[h].Pos = to
}

func TestApply_Line(t *testing.T) {
	el := sketch.Element{ID: "a", Kind: sketch.KindLine, Start: geom.V(0, 0), End: geom.V(100, 0)}
	a := arenaFor(t, el)
	movePoint(t, a, "a", sketch.RoleEnd, 0, geom.V(120, 5))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(0, 0), out[0].Start)
	assert.Equal(t, geom.V(120, 5), out[0].End)
	assert.Equal(t, geom.V(100, 0), el.End, "input is not mutated")
}

func TestApply_HLineSignedLength(t *testing.T) {
	el := sketch.Element{ID: "h", Kind: sketch.KindHLine, Start: geom.V(10, 10), Length: 40}
	a := arenaFor(t, el)
	// Solve moved the end to the left of start, and slightly off axis.
	movePoint(t, a, "h", sketch.RoleEnd, 0, geom.V(-20, 13))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(10, 10), out[0].Start)
	assert.Equal(t, -30.0, out[0].Length, "signed delta along X; off-axis drift discarded")
}

func TestApply_VLine(t *testing.T) {
	el := sketch.Element{ID: "v", Kind: sketch.KindVLine, Start: geom.V(0, 0), Length: 20}
	a := arenaFor(t, el)
	movePoint(t, a, "v", sketch.RoleStart, 0, geom.V(5, 5))
	movePoint(t, a, "v", sketch.RoleEnd, 0, geom.V(5, 65))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(5, 5), out[0].Start)
	assert.Equal(t, 60.0, out[0].Length)
}

func TestApply_Rectangle(t *testing.T) {
	el := sketch.Element{ID: "r", Kind: sketch.KindRectangle, Origin: geom.V(0, 0), Width: 30, Height: 20}
	a := arenaFor(t, el)
	movePoint(t, a, "r", sketch.RoleCorner, 0, geom.V(10, 5))
	movePoint(t, a, "r", sketch.RoleCorner, 1, geom.V(50, 5))
	movePoint(t, a, "r", sketch.RoleCorner, 3, geom.V(10, 30))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(10, 5), out[0].Origin)
	assert.Equal(t, 40.0, out[0].Width)
	assert.Equal(t, 25.0, out[0].Height)
}

func TestApply_Circle(t *testing.T) {
	el := sketch.Element{ID: "c", Kind: sketch.KindCircle, Center: geom.V(0, 0), Radius: 5}
	a := arenaFor(t, el)
	movePoint(t, a, "c", sketch.RoleCenter, 0, geom.V(7, 8))
	a.Circles[0].Radius = 9

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(7, 8), out[0].Center)
	assert.Equal(t, 9.0, out[0].Radius)
}

func TestApply_ArcAnglesFollowSolvedPoints(t *testing.T) {
	el := sketch.Element{
		ID: "arc", Kind: sketch.KindArc,
		Center: geom.V(0, 0), Radius: 10,
		StartAngle: 0, EndAngle: math.Pi / 2,
	}
	a := arenaFor(t, el)
	// Rotate the end point to 180 degrees.
	movePoint(t, a, "arc", sketch.RoleEnd, 0, geom.V(-10, 0))

	out := Apply([]sketch.Element{el}, a)
	assert.InDelta(t, 0, out[0].StartAngle, 1e-12)
	assert.InDelta(t, math.Pi, out[0].EndAngle, 1e-12)
}

func TestApply_SplinePerIndex(t *testing.T) {
	el := sketch.Element{ID: "s", Kind: sketch.KindSpline,
		Controls: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 8}, {X: 20, Y: 0}}}
	a := arenaFor(t, el)
	movePoint(t, a, "s", sketch.RoleControl, 1, geom.V(11, 9))
	movePoint(t, a, "s", sketch.RoleControl, 2, geom.V(25, 1))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, geom.V(0, 0), out[0].Controls[0])
	assert.Equal(t, geom.V(11, 9), out[0].Controls[1])
	assert.Equal(t, geom.V(25, 1), out[0].Controls[2])
	assert.Equal(t, geom.V(10, 8), el.Controls[1], "input controls are not mutated")
}

func TestApply_NaNFallsBackPerCoordinate(t *testing.T) {
	el := sketch.Element{ID: "a", Kind: sketch.KindLine, Start: geom.V(1, 2), End: geom.V(3, 4)}
	a := arenaFor(t, el)
	movePoint(t, a, "a", sketch.RoleEnd, 0, geom.V(math.NaN(), 40))

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, 3.0, out[0].End.X, "NaN axis keeps the pre-solve value")
	assert.Equal(t, 40.0, out[0].End.Y, "good axis still updates")
}

func TestApply_NaNRadiusFallsBack(t *testing.T) {
	el := sketch.Element{ID: "c", Kind: sketch.KindCircle, Center: geom.V(0, 0), Radius: 5}
	a := arenaFor(t, el)
	a.Circles[0].Radius = math.NaN()

	out := Apply([]sketch.Element{el}, a)
	assert.Equal(t, 5.0, out[0].Radius)
}

func TestApply_MissingPrimitivesLeaveElementUnchanged(t *testing.T) {
	el := sketch.Element{ID: "a", Kind: sketch.KindLine, Start: geom.V(1, 2), End: geom.V(3, 4)}
	empty := prim.NewArena()

	out := Apply([]sketch.Element{el}, empty)
	assert.Equal(t, el, out[0])
}
