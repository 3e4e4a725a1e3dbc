package sketch

import "fmt"

// ValidationError describes one structural problem in a document.
type ValidationError struct {
	// Path locates the offending element or constraint, e.g.
	// "elements[2]" or "constraints[0].points[1]".
	Path string

	// Message is a human-readable description.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a document's structural invariants and returns every
// violation found. A nil/empty result means the document is solvable as
// far as static checks can tell.
//
// Checks:
//  1. Element ids are unique and non-empty.
//  2. Element kinds are known; variant fields are plausible (spline needs
//     at least two control points, arc/circle need positive radius).
//  3. Constraint types are known; dimension types carry a value.
//  4. Every ref resolves to an element that exists and owns a point/line/
//     circle of that role and index.
//
// Validate is a pure function with no side effects.
func Validate(doc *Document) []error {
	v := &validator{byID: make(map[string]Element, len(doc.Elements))}

	for i, e := range doc.Elements {
		v.validateElement(i, e)
	}
	for i, c := range doc.Constraints {
		v.validateConstraint(i, c)
	}
	return v.errs
}

type validator struct {
	errs []error
	byID map[string]Element
}

func (v *validator) addError(path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) validateElement(i int, e Element) {
	path := fmt.Sprintf("elements[%d]", i)

	if e.ID == "" {
		v.addError(path, "element id is required")
		return
	}
	if _, dup := v.byID[e.ID]; dup {
		v.addError(path, "duplicate element id %q", e.ID)
		return
	}
	v.byID[e.ID] = e

	switch e.Kind {
	case KindLine, KindHLine, KindVLine, KindRectangle:
		// Zero lengths and sizes are legal starting states; the solver
		// guards degenerate segments itself.
	case KindCircle, KindArc:
		if e.Radius <= 0 {
			v.addError(path, "%s %q needs a positive radius, got %v", e.Kind, e.ID, e.Radius)
		}
	case KindSpline:
		if len(e.Controls) < 2 {
			v.addError(path, "spline %q needs at least 2 control points, got %d", e.ID, len(e.Controls))
		}
	default:
		v.addError(path, "unknown element kind %q", e.Kind)
	}
}

func (v *validator) validateConstraint(i int, c Constraint) {
	path := fmt.Sprintf("constraints[%d]", i)

	if !ValidConstraintTypes[c.Type] {
		v.addError(path, "unknown constraint type %q", c.Type)
		return
	}
	if c.Type.RequiresValue() && c.Value == nil {
		v.addError(path, "%s constraint requires a value", c.Type)
	}
	if len(c.Points) > 2 || len(c.Lines) > 2 || len(c.Circles) > 2 {
		v.addError(path, "constraints reference at most two of each primitive kind")
	}

	for j, ref := range c.Points {
		v.validatePointRef(fmt.Sprintf("%s.points[%d]", path, j), ref)
	}
	for j, ref := range c.Lines {
		v.validateLineRef(fmt.Sprintf("%s.lines[%d]", path, j), ref)
	}
	for j, ref := range c.Circles {
		v.validateCircleRef(fmt.Sprintf("%s.circles[%d]", path, j), ref)
	}
}

func (v *validator) validatePointRef(path string, ref PointRef) {
	e, ok := v.byID[ref.Element]
	if !ok {
		v.addError(path, "unknown element %q", ref.Element)
		return
	}
	if !ValidRoles[ref.Role] {
		v.addError(path, "unknown role %q", ref.Role)
		return
	}
	ok = false
	switch e.Kind {
	case KindLine, KindHLine, KindVLine:
		ok = (ref.Role == RoleStart || ref.Role == RoleEnd) && ref.Index == 0
	case KindRectangle:
		ok = ref.Role == RoleCorner && ref.Index >= 0 && ref.Index < 4
	case KindCircle:
		ok = ref.Role == RoleCenter && ref.Index == 0
	case KindArc:
		ok = (ref.Role == RoleCenter || ref.Role == RoleStart || ref.Role == RoleEnd) && ref.Index == 0
	case KindSpline:
		ok = ref.Role == RoleControl && ref.Index >= 0 && ref.Index < len(e.Controls)
	}
	if !ok {
		v.addError(path, "%s element %q has no point %s", e.Kind, ref.Element, ref)
	}
}

func (v *validator) validateLineRef(path string, ref LineRef) {
	e, ok := v.byID[ref.Element]
	if !ok {
		v.addError(path, "unknown element %q", ref.Element)
		return
	}
	switch e.Kind {
	case KindLine, KindHLine, KindVLine:
		if ref.Index != 0 {
			v.addError(path, "%s element %q has a single edge", e.Kind, ref.Element)
		}
	case KindRectangle:
		if ref.Index < 0 || ref.Index > 3 {
			v.addError(path, "rectangle %q has edges 0..3, got %d", ref.Element, ref.Index)
		}
	default:
		v.addError(path, "%s element %q has no line segments", e.Kind, ref.Element)
	}
}

func (v *validator) validateCircleRef(path string, ref CircleRef) {
	e, ok := v.byID[ref.Element]
	if !ok {
		v.addError(path, "unknown element %q", ref.Element)
		return
	}
	if e.Kind != KindCircle && e.Kind != KindArc {
		v.addError(path, "%s element %q has no circle", e.Kind, ref.Element)
	}
}
