package autocon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
)

func line(id string, x1, y1, x2, y2 float64) sketch.Element {
	return sketch.Element{ID: id, Kind: sketch.KindLine, Start: geom.V(x1, y1), End: geom.V(x2, y2)}
}

func coincidences(ds []Detection) []sketch.Constraint {
	var out []sketch.Constraint
	for _, d := range ds {
		if d.Constraint.Type == sketch.Coincident {
			out = append(out, d.Constraint)
		}
	}
	return out
}

func TestDetect_CoincidenceWithinTolerance(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}
	newEl := line("b", 103, 4, 150, 60)

	ds, err := Detect(newEl, existing, nil)
	require.NoError(t, err)

	cs := coincidences(ds)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].SamePointPair(
		sketch.PointRef{Element: "b", Role: sketch.RoleStart},
		sketch.PointRef{Element: "a", Role: sketch.RoleEnd},
	))
	require.NotEmpty(t, ds[0].Description)
}

func TestDetect_ToleranceBoundary(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}

	// Exactly 5.0 apart on one axis: coincident.
	ds, err := Detect(line("b", 105, 0, 200, 60), existing, nil)
	require.NoError(t, err)
	assert.Len(t, coincidences(ds), 1, "5.0 units is within tolerance")

	// 5.1 apart: not coincident.
	ds, err = Detect(line("c", 105.1, 0, 200, 60), existing, nil)
	require.NoError(t, err)
	assert.Empty(t, coincidences(ds), "5.1 units is out of tolerance")
}

func TestDetect_ChebyshevNotEuclidean(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}

	// Offset (4, 4): Euclidean distance 5.66 but both axes within 5.
	ds, err := Detect(line("b", 104, 4, 200, 60), existing, nil)
	require.NoError(t, err)
	assert.Len(t, coincidences(ds), 1)
}

func TestDetect_ExcludesOwnPoints(t *testing.T) {
	// A short closed-ish element must not coincide with itself.
	newEl := line("a", 0, 0, 3, 0)
	ds, err := Detect(newEl, []sketch.Element{newEl}, nil)
	require.NoError(t, err)
	assert.Empty(t, coincidences(ds))
}

func TestDetect_SkipsExistingCoincidence(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}
	already := []sketch.Constraint{{
		ID:   "k",
		Type: sketch.Coincident,
		Points: []sketch.PointRef{
			{Element: "a", Role: sketch.RoleEnd},
			{Element: "b", Role: sketch.RoleStart},
		},
	}}

	ds, err := Detect(line("b", 100, 0, 150, 50), existing, already)
	require.NoError(t, err)
	assert.Empty(t, coincidences(ds), "unordered duplicate must be skipped")
}

func TestDetect_RectangleCornersSnap(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}
	rect := sketch.Element{ID: "r", Kind: sketch.KindRectangle, Origin: geom.V(99, 2), Width: 30, Height: 20}

	ds, err := Detect(rect, existing, nil)
	require.NoError(t, err)

	cs := coincidences(ds)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].SamePointPair(
		sketch.PointRef{Element: "r", Role: sketch.RoleCorner, Index: 0},
		sketch.PointRef{Element: "a", Role: sketch.RoleEnd},
	))
}

func TestDetect_HorizontalSnap(t *testing.T) {
	// 50 long, within 1 degree of horizontal.
	newEl := line("a", 0, 0, 50, 0.6)
	ds, err := Detect(newEl, nil, nil)
	require.NoError(t, err)

	require.Len(t, ds, 1)
	assert.Equal(t, sketch.Horizontal, ds[0].Constraint.Type)
	assert.Equal(t, "a", ds[0].Constraint.Lines[0].Element)
}

func TestDetect_HorizontalSnapReversedDirection(t *testing.T) {
	// Pointing in -X: angle near 180 degrees still counts as horizontal.
	ds, err := Detect(line("a", 50, 0, 0, 0.6), nil, nil)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, sketch.Horizontal, ds[0].Constraint.Type)
}

func TestDetect_VerticalSnap(t *testing.T) {
	ds, err := Detect(line("a", 0, 0, 0.6, 50), nil, nil)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, sketch.Vertical, ds[0].Constraint.Type)

	// Downward vertical too.
	ds, err = Detect(line("b", 0, 0, -0.6, -50), nil, nil)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, sketch.Vertical, ds[0].Constraint.Type)
}

func TestDetect_NoSnapOutsideWindow(t *testing.T) {
	// 10 degrees off horizontal: no snap either way.
	ds, err := Detect(line("a", 0, 0, 50, 8.8), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDetect_NoSnapForShortLines(t *testing.T) {
	// Under 10 units long: angle too noisy to snap.
	ds, err := Detect(line("a", 0, 0, 9, 0), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDetect_NoSnapForAxisLockedKinds(t *testing.T) {
	h := sketch.Element{ID: "h", Kind: sketch.KindHLine, Start: geom.V(0, 0), Length: 50}
	ds, err := Detect(h, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ds, "hline is axis-locked by construction")
}

func TestDetect_SkipsExistingAxisConstraint(t *testing.T) {
	already := []sketch.Constraint{{
		ID:    "k",
		Type:  sketch.Horizontal,
		Lines: []sketch.LineRef{{Element: "a"}},
	}}
	ds, err := Detect(line("a", 0, 0, 50, 0.5), nil, already)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDetect_ArcEndpointsSnap(t *testing.T) {
	existing := []sketch.Element{line("a", 0, 0, 100, 0)}
	arc := sketch.Element{
		ID: "arc", Kind: sketch.KindArc,
		Center: geom.V(100, 20), Radius: 20,
		StartAngle: -1.5707963267948966, // start point at (100, 0)
		EndAngle:   0,
	}

	ds, err := Detect(arc, existing, nil)
	require.NoError(t, err)

	cs := coincidences(ds)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].SamePointPair(
		sketch.PointRef{Element: "arc", Role: sketch.RoleStart},
		sketch.PointRef{Element: "a", Role: sketch.RoleEnd},
	))
}
