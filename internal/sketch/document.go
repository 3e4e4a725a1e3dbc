package sketch

import "github.com/planarcad/planar/internal/geom"

// Document is a complete sketch: elements in draw order plus the
// constraints declared against them. Element order is significant - it
// fixes primitive extraction order and therefore the solver's variable
// layout, which keeps solves deterministic for a given document.
type Document struct {
	Name        string       `json:"name" yaml:"name"`
	Elements    []Element    `json:"elements" yaml:"elements"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Element returns the element with the given id, or ok=false.
func (d *Document) Element(id string) (Element, bool) {
	for _, e := range d.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// Constraint returns the constraint with the given id, or ok=false.
func (d *Document) Constraint(id string) (Constraint, bool) {
	for _, c := range d.Constraints {
		if c.ID == id {
			return c, true
		}
	}
	return Constraint{}, false
}

// Clone returns a deep copy of the document. Solve cycles mutate the copy
// and leave the original untouched until write-back succeeds.
func (d *Document) Clone() *Document {
	out := &Document{
		Name:        d.Name,
		Elements:    make([]Element, len(d.Elements)),
		Constraints: make([]Constraint, len(d.Constraints)),
	}
	for i, e := range d.Elements {
		out.Elements[i] = cloneElement(e)
	}
	for i, c := range d.Constraints {
		out.Constraints[i] = cloneConstraint(c)
	}
	return out
}

func cloneElement(e Element) Element {
	if len(e.Controls) > 0 {
		controls := make([]geom.Vec2, len(e.Controls))
		copy(controls, e.Controls)
		e.Controls = controls
	}
	return e
}

func cloneConstraint(c Constraint) Constraint {
	if len(c.Points) > 0 {
		pts := make([]PointRef, len(c.Points))
		copy(pts, c.Points)
		c.Points = pts
	}
	if len(c.Lines) > 0 {
		lines := make([]LineRef, len(c.Lines))
		copy(lines, c.Lines)
		c.Lines = lines
	}
	if len(c.Circles) > 0 {
		circles := make([]CircleRef, len(c.Circles))
		copy(circles, c.Circles)
		c.Circles = circles
	}
	if c.Value != nil {
		v := *c.Value
		c.Value = &v
	}
	return c
}
