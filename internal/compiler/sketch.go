package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/planarcad/planar/internal/geom"
	"github.com/planarcad/planar/internal/sketch"
)

// CompileSketch parses a CUE value into a sketch document.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the sketch struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`sketch: { name: "bracket", ... }`)
//	doc, err := CompileSketch(v.LookupPath(cue.ParsePath("sketch")))
//
// Elements compile in source order, which fixes the solver's variable
// layout. The compiled document is validated before it is returned:
// unknown kinds, types, and dangling refs are compile errors.
func CompileSketch(v cue.Value) (*sketch.Document, error) {
	doc, err := ParseSketch(v)
	if err != nil {
		return nil, err
	}
	if errs := sketch.Validate(doc); len(errs) > 0 {
		return nil, &CompileError{
			Field:   "sketch",
			Message: errs[0].Error(),
			Pos:     v.Pos(),
		}
	}
	return doc, nil
}

// ParseSketch compiles the CUE value without document validation, for
// callers that want the full validation report rather than the first
// error. Syntactic problems (missing fields, bad ref strings) are still
// compile errors.
func ParseSketch(v cue.Value) (*sketch.Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &sketch.Document{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	doc.Name = name

	doc.Elements, err = parseElements(v)
	if err != nil {
		return nil, err
	}

	doc.Constraints, err = parseConstraints(v)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// parseElements extracts the elements struct, keyed by element id.
func parseElements(v cue.Value) ([]sketch.Element, error) {
	elemsVal := v.LookupPath(cue.ParsePath("elements"))
	if !elemsVal.Exists() {
		return nil, &CompileError{
			Field:   "elements",
			Message: "elements are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := elemsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var elements []sketch.Element
	for iter.Next() {
		e, err := parseElement(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func parseElement(id string, v cue.Value) (sketch.Element, error) {
	field := fmt.Sprintf("elements.%s", id)

	kindStr, err := requireString(v, "kind", field)
	if err != nil {
		return sketch.Element{}, err
	}
	kind := sketch.ElementKind(kindStr)
	if !sketch.ValidElementKinds[kind] {
		return sketch.Element{}, &CompileError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("unknown element kind %q", kindStr),
			Pos:     v.Pos(),
		}
	}

	e := sketch.Element{ID: id, Kind: kind}
	switch kind {
	case sketch.KindLine:
		if e.Start, err = requireVec(v, "start", field); err != nil {
			return sketch.Element{}, err
		}
		if e.End, err = requireVec(v, "end", field); err != nil {
			return sketch.Element{}, err
		}

	case sketch.KindHLine, sketch.KindVLine:
		if e.Start, err = requireVec(v, "start", field); err != nil {
			return sketch.Element{}, err
		}
		if e.Length, err = requireFloat(v, "length", field); err != nil {
			return sketch.Element{}, err
		}

	case sketch.KindRectangle:
		if e.Origin, err = requireVec(v, "origin", field); err != nil {
			return sketch.Element{}, err
		}
		if e.Width, err = requireFloat(v, "width", field); err != nil {
			return sketch.Element{}, err
		}
		if e.Height, err = requireFloat(v, "height", field); err != nil {
			return sketch.Element{}, err
		}

	case sketch.KindCircle:
		if e.Center, err = requireVec(v, "center", field); err != nil {
			return sketch.Element{}, err
		}
		if e.Radius, err = requireFloat(v, "radius", field); err != nil {
			return sketch.Element{}, err
		}

	case sketch.KindArc:
		if e.Center, err = requireVec(v, "center", field); err != nil {
			return sketch.Element{}, err
		}
		if e.Radius, err = requireFloat(v, "radius", field); err != nil {
			return sketch.Element{}, err
		}
		if e.StartAngle, err = requireFloat(v, "start_angle", field); err != nil {
			return sketch.Element{}, err
		}
		if e.EndAngle, err = requireFloat(v, "end_angle", field); err != nil {
			return sketch.Element{}, err
		}

	case sketch.KindSpline:
		ctrlVal := v.LookupPath(cue.ParsePath("controls"))
		if !ctrlVal.Exists() {
			return sketch.Element{}, &CompileError{
				Field:   field + ".controls",
				Message: "spline controls are required",
				Pos:     v.Pos(),
			}
		}
		ctrlIter, err := ctrlVal.List()
		if err != nil {
			return sketch.Element{}, formatCUEError(err)
		}
		for ctrlIter.Next() {
			p, err := parseVec(ctrlIter.Value(), field+".controls")
			if err != nil {
				return sketch.Element{}, err
			}
			e.Controls = append(e.Controls, p)
		}
	}
	return e, nil
}

// parseConstraints extracts the optional constraints list.
func parseConstraints(v cue.Value) ([]sketch.Constraint, error) {
	consVal := v.LookupPath(cue.ParsePath("constraints"))
	if !consVal.Exists() {
		return nil, nil
	}

	iter, err := consVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var constraints []sketch.Constraint
	i := 0
	for iter.Next() {
		c, err := parseConstraint(i, iter.Value())
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
		i++
	}
	return constraints, nil
}

func parseConstraint(i int, v cue.Value) (sketch.Constraint, error) {
	field := fmt.Sprintf("constraints[%d]", i)

	typeStr, err := requireString(v, "type", field)
	if err != nil {
		return sketch.Constraint{}, err
	}
	ctype := sketch.ConstraintType(typeStr)
	if !sketch.ValidConstraintTypes[ctype] {
		return sketch.Constraint{}, &CompileError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown constraint type %q", typeStr),
			Pos:     v.Pos(),
		}
	}

	c := sketch.Constraint{Type: ctype}

	// id is optional in authored documents; the engine assigns one when a
	// constraint arrives without it. Compiled documents get a positional
	// fallback so constraints are addressable immediately.
	if idVal := v.LookupPath(cue.ParsePath("id")); idVal.Exists() {
		if c.ID, err = idVal.String(); err != nil {
			return sketch.Constraint{}, formatCUEError(err)
		}
	} else {
		c.ID = fmt.Sprintf("%s-%d", typeStr, i)
	}

	if err := parseRefList(v, "points", field, func(s string) error {
		ref, err := ParsePointRef(s)
		if err != nil {
			return err
		}
		c.Points = append(c.Points, ref)
		return nil
	}); err != nil {
		return sketch.Constraint{}, err
	}

	if err := parseRefList(v, "lines", field, func(s string) error {
		ref, err := ParseLineRef(s)
		if err != nil {
			return err
		}
		c.Lines = append(c.Lines, ref)
		return nil
	}); err != nil {
		return sketch.Constraint{}, err
	}

	if err := parseRefList(v, "circles", field, func(s string) error {
		ref, err := ParseCircleRef(s)
		if err != nil {
			return err
		}
		c.Circles = append(c.Circles, ref)
		return nil
	}); err != nil {
		return sketch.Constraint{}, err
	}

	if valVal := v.LookupPath(cue.ParsePath("value")); valVal.Exists() {
		val, err := valVal.Float64()
		if err != nil {
			return sketch.Constraint{}, formatCUEError(err)
		}
		c.Value = sketch.Float(val)
	}
	if ctype.RequiresValue() && c.Value == nil {
		return sketch.Constraint{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s constraint requires a value", ctype),
			Pos:     v.Pos(),
		}
	}
	return c, nil
}

// parseRefList iterates a list of ref strings at path, feeding each to add.
func parseRefList(v cue.Value, path, field string, add func(string) error) error {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return formatCUEError(err)
		}
		if err := add(s); err != nil {
			return &CompileError{
				Field:   fmt.Sprintf("%s.%s", field, path),
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func requireString(v cue.Value, path, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", &CompileError{
			Field:   fmt.Sprintf("%s.%s", field, path),
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requireFloat(v cue.Value, path, field string) (float64, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return 0, &CompileError{
			Field:   fmt.Sprintf("%s.%s", field, path),
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	f, err := val.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func requireVec(v cue.Value, path, field string) (geom.Vec2, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return geom.Vec2{}, &CompileError{
			Field:   fmt.Sprintf("%s.%s", field, path),
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	return parseVec(val, fmt.Sprintf("%s.%s", field, path))
}

// parseVec parses a {x, y} struct.
func parseVec(v cue.Value, field string) (geom.Vec2, error) {
	x, err := requireFloat(v, "x", field)
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := requireFloat(v, "y", field)
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.V(x, y), nil
}
