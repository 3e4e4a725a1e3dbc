package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
)

func compileString(t *testing.T, src string) (*sketch.Document, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileSketch(v.LookupPath(cue.ParsePath("sketch")))
}

func TestCompileSketchBasic(t *testing.T) {
	doc, err := compileString(t, `
		sketch: {
			name: "bracket"
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 100, y: 0}}
				b: {kind: "circle", center: {x: 50, y: 40}, radius: 12}
			}
			constraints: [
				{type: "horizontal", lines: ["a"]},
				{type: "distance", points: ["a.start", "a.end"], value: 120},
				{type: "radius", circles: ["b"], value: 10},
			]
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, "bracket", doc.Name)
	require.Len(t, doc.Elements, 2)
	assert.Equal(t, "a", doc.Elements[0].ID, "elements compile in source order")
	assert.Equal(t, sketch.KindLine, doc.Elements[0].Kind)
	assert.Equal(t, geom.V(100, 0), doc.Elements[0].End)
	assert.Equal(t, 12.0, doc.Elements[1].Radius)

	require.Len(t, doc.Constraints, 3)
	assert.Equal(t, sketch.Horizontal, doc.Constraints[0].Type)
	assert.Equal(t, sketch.LineRef{Element: "a"}, doc.Constraints[0].Lines[0])
	assert.Equal(t, sketch.PointRef{Element: "a", Role: sketch.RoleEnd}, doc.Constraints[1].Points[1])
	assert.Equal(t, 120.0, doc.Constraints[1].Val())
	assert.Equal(t, sketch.CircleRef{Element: "b"}, doc.Constraints[2].Circles[0])
}

func TestCompileSketchAllKinds(t *testing.T) {
	doc, err := compileString(t, `
		sketch: {
			name: "kinds"
			elements: {
				h: {kind: "hline", start: {x: 0, y: 0}, length: 40}
				v: {kind: "vline", start: {x: 0, y: 0}, length: 30}
				r: {kind: "rectangle", origin: {x: 10, y: 10}, width: 20, height: 15}
				arc: {kind: "arc", center: {x: 0, y: 0}, radius: 5, start_angle: 0, end_angle: 1.57}
				s: {kind: "spline", controls: [{x: 0, y: 0}, {x: 5, y: 8}, {x: 10, y: 0}]}
			}
		}
	`)
	require.NoError(t, err)
	require.Len(t, doc.Elements, 5)

	h, _ := doc.Element("h")
	assert.Equal(t, 40.0, h.Length)
	r, _ := doc.Element("r")
	assert.Equal(t, geom.V(10, 10), r.Origin)
	assert.Equal(t, 15.0, r.Height)
	arc, _ := doc.Element("arc")
	assert.Equal(t, 1.57, arc.EndAngle)
	s, _ := doc.Element("s")
	assert.Len(t, s.Controls, 3)
}

func TestCompileSketchConstraintIDs(t *testing.T) {
	doc, err := compileString(t, `
		sketch: {
			name: "ids"
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 10, y: 0}}
			}
			constraints: [
				{id: "my-h", type: "horizontal", lines: ["a"]},
				{type: "vertical", lines: ["a"]},
			]
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, "my-h", doc.Constraints[0].ID, "explicit id wins")
	assert.Equal(t, "vertical-1", doc.Constraints[1].ID, "positional fallback id")
}

func TestCompileSketchRectangleRefs(t *testing.T) {
	doc, err := compileString(t, `
		sketch: {
			name: "rect"
			elements: {
				r: {kind: "rectangle", origin: {x: 0, y: 0}, width: 10, height: 5}
			}
			constraints: [
				{type: "fixed", points: ["r.corner0"]},
				{type: "distance", lines: ["r.edge1"], value: 5},
			]
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, sketch.PointRef{Element: "r", Role: sketch.RoleCorner, Index: 0}, doc.Constraints[0].Points[0])
	assert.Equal(t, sketch.LineRef{Element: "r", Index: 1}, doc.Constraints[1].Lines[0])
}

func TestCompileSketchMissingName(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 10, y: 0}}
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileSketchUnknownKind(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			name: "bad"
			elements: {
				a: {kind: "bezier", start: {x: 0, y: 0}}
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bezier")
}

func TestCompileSketchMissingVariantField(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			name: "bad"
			elements: {
				c: {kind: "circle", center: {x: 0, y: 0}}
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius")
}

func TestCompileSketchMissingDimensionValue(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			name: "bad"
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 10, y: 0}}
			}
			constraints: [
				{type: "distance", points: ["a.start", "a.end"]},
			]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a value")
}

func TestCompileSketchDanglingRef(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			name: "bad"
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 10, y: 0}}
			}
			constraints: [
				{type: "horizontal", lines: ["ghost"]},
			]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestCompileSketchBadRefSyntax(t *testing.T) {
	_, err := compileString(t, `
		sketch: {
			name: "bad"
			elements: {
				a: {kind: "line", start: {x: 0, y: 0}, end: {x: 10, y: 0}}
			}
			constraints: [
				{type: "coincident", points: ["a.start", "noRoleHere"]},
			]
		}
	`)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Field, "points")
}

func TestParsePointRef(t *testing.T) {
	tests := []struct {
		in      string
		want    sketch.PointRef
		wantErr bool
	}{
		{in: "a.start", want: sketch.PointRef{Element: "a", Role: sketch.RoleStart}},
		{in: "b.center", want: sketch.PointRef{Element: "b", Role: sketch.RoleCenter}},
		{in: "r.corner3", want: sketch.PointRef{Element: "r", Role: sketch.RoleCorner, Index: 3}},
		{in: "s.control12", want: sketch.PointRef{Element: "s", Role: sketch.RoleControl, Index: 12}},
		{in: "a", wantErr: true},
		{in: ".start", wantErr: true},
		{in: "a.", wantErr: true},
		{in: "a.wobble", wantErr: true},
		{in: "a.start2", wantErr: true},
		{in: "a.7", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePointRef(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParsePointRef(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParsePointRef(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseLineRef(t *testing.T) {
	tests := []struct {
		in      string
		want    sketch.LineRef
		wantErr bool
	}{
		{in: "a", want: sketch.LineRef{Element: "a"}},
		{in: "r.edge0", want: sketch.LineRef{Element: "r"}},
		{in: "r.edge3", want: sketch.LineRef{Element: "r", Index: 3}},
		{in: "r.side1", wantErr: true},
		{in: "r.edge", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLineRef(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseLineRef(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseLineRef(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCircleRef(t *testing.T) {
	got, err := ParseCircleRef("b")
	require.NoError(t, err)
	assert.Equal(t, sketch.CircleRef{Element: "b"}, got)

	_, err = ParseCircleRef("b.center")
	assert.Error(t, err)
}
