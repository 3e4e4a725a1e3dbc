package sketch

import "fmt"

// Role names a point's position within its owning element.
type Role string

const (
	RoleStart   Role = "start"
	RoleEnd     Role = "end"
	RoleCenter  Role = "center"
	RoleCorner  Role = "corner"  // indexed 0..3 on rectangles
	RoleControl Role = "control" // indexed on splines
)

// ValidRoles defines the allowed point roles.
var ValidRoles = map[Role]bool{
	RoleStart:   true,
	RoleEnd:     true,
	RoleCenter:  true,
	RoleCorner:  true,
	RoleControl: true,
}

// PointRef identifies a point by owning element, role, and index. Index is
// zero except for corner and control roles. Refs are stable across solves:
// the solver rebuilds primitives every cycle and rebinds refs through a
// per-solve allocation table.
type PointRef struct {
	Element string `json:"element" yaml:"element"`
	Role    Role   `json:"role" yaml:"role"`
	Index   int    `json:"index,omitempty" yaml:"index,omitempty"`
}

func (r PointRef) String() string {
	if r.Role == RoleCorner || r.Role == RoleControl {
		return fmt.Sprintf("%s.%s%d", r.Element, r.Role, r.Index)
	}
	return fmt.Sprintf("%s.%s", r.Element, r.Role)
}

// LineRef identifies a line segment by owning element and edge index.
// Index is zero except on rectangles, where edges are counted 0..3
// counterclockwise from the bottom edge.
type LineRef struct {
	Element string `json:"element" yaml:"element"`
	Index   int    `json:"index,omitempty" yaml:"index,omitempty"`
}

func (r LineRef) String() string {
	if r.Index != 0 {
		return fmt.Sprintf("%s.edge%d", r.Element, r.Index)
	}
	return r.Element
}

// CircleRef identifies the circle owned by a circle or arc element.
type CircleRef struct {
	Element string `json:"element" yaml:"element"`
}

func (r CircleRef) String() string {
	return r.Element
}

// ConstraintType enumerates the constraint vocabulary.
type ConstraintType string

const (
	Horizontal    ConstraintType = "horizontal"
	Vertical      ConstraintType = "vertical"
	Coincident    ConstraintType = "coincident"
	Distance      ConstraintType = "distance"
	Radius        ConstraintType = "radius"
	Angle         ConstraintType = "angle"
	Parallel      ConstraintType = "parallel"
	Perpendicular ConstraintType = "perpendicular"
	EqualLength   ConstraintType = "equal_length"
	Tangent       ConstraintType = "tangent"
	Midpoint      ConstraintType = "midpoint"
	Concentric    ConstraintType = "concentric"
	Fixed         ConstraintType = "fixed"
)

// ValidConstraintTypes defines the allowed constraint types.
var ValidConstraintTypes = map[ConstraintType]bool{
	Horizontal:    true,
	Vertical:      true,
	Coincident:    true,
	Distance:      true,
	Radius:        true,
	Angle:         true,
	Parallel:      true,
	Perpendicular: true,
	EqualLength:   true,
	Tangent:       true,
	Midpoint:      true,
	Concentric:    true,
	Fixed:         true,
}

// RequiresValue reports whether the constraint type consumes the Value
// field (a dimension: length, radius, or angle in degrees).
func (t ConstraintType) RequiresValue() bool {
	switch t {
	case Distance, Radius, Angle:
		return true
	}
	return false
}

// Constraint is one declared relationship. The selector pattern - which of
// Points, Lines, Circles are populated and how many - determines the
// residual form the solver builds; see internal/solver.
//
// Constraints persist on the owning sketch. The primitives they bind to are
// ephemeral, recomputed from elements on every solve.
type Constraint struct {
	ID      string         `json:"id" yaml:"id"`
	Type    ConstraintType `json:"type" yaml:"type"`
	Points  []PointRef     `json:"points,omitempty" yaml:"points,omitempty"`
	Lines   []LineRef      `json:"lines,omitempty" yaml:"lines,omitempty"`
	Circles []CircleRef    `json:"circles,omitempty" yaml:"circles,omitempty"`
	Value   *float64       `json:"value,omitempty" yaml:"value,omitempty"`
}

// Val returns the dimension value, or 0 when none is set.
func (c Constraint) Val() float64 {
	if c.Value == nil {
		return 0
	}
	return *c.Value
}

// SamePointPair reports whether c relates the same unordered point pair as
// (a, b). Used to deduplicate inferred coincidences.
func (c Constraint) SamePointPair(a, b PointRef) bool {
	if len(c.Points) != 2 {
		return false
	}
	return (c.Points[0] == a && c.Points[1] == b) ||
		(c.Points[0] == b && c.Points[1] == a)
}

// Float returns a pointer to v, for building constraints with dimensions.
func Float(v float64) *float64 {
	return &v
}
