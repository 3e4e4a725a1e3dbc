package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/planarcad/planar/internal/sketch"
)

// Constraint refs are written as dotted strings in sketch documents:
//
//	"a.start"     point: line/arc start
//	"r.corner2"   point: rectangle corner 2
//	"s.control4"  point: spline control 4
//	"b.center"    point: circle/arc center
//	"a"           line: the element's single segment
//	"r.edge1"     line: rectangle edge 1
//	"b"           circle: the element's circle
//
// Parsing is purely syntactic; whether the element exists and owns the
// named point is checked by document validation afterwards.

// ParsePointRef parses "elem.role" or "elem.roleN" into a PointRef.
func ParsePointRef(s string) (sketch.PointRef, error) {
	elem, rest, ok := strings.Cut(s, ".")
	if !ok || elem == "" || rest == "" {
		return sketch.PointRef{}, fmt.Errorf("point ref %q: want \"element.role\"", s)
	}

	role, index, err := splitRole(rest)
	if err != nil {
		return sketch.PointRef{}, fmt.Errorf("point ref %q: %w", s, err)
	}
	if !sketch.ValidRoles[role] {
		return sketch.PointRef{}, fmt.Errorf("point ref %q: unknown role %q", s, role)
	}
	if index > 0 && role != sketch.RoleCorner && role != sketch.RoleControl {
		return sketch.PointRef{}, fmt.Errorf("point ref %q: role %q takes no index", s, role)
	}
	return sketch.PointRef{Element: elem, Role: role, Index: index}, nil
}

// ParseLineRef parses "elem" or "elem.edgeN" into a LineRef.
func ParseLineRef(s string) (sketch.LineRef, error) {
	elem, rest, ok := strings.Cut(s, ".")
	if elem == "" {
		return sketch.LineRef{}, fmt.Errorf("line ref %q: empty element", s)
	}
	if !ok {
		return sketch.LineRef{Element: elem}, nil
	}

	digits, found := strings.CutPrefix(rest, "edge")
	if !found {
		return sketch.LineRef{}, fmt.Errorf("line ref %q: want \"element\" or \"element.edgeN\"", s)
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return sketch.LineRef{}, fmt.Errorf("line ref %q: bad edge index %q", s, digits)
	}
	return sketch.LineRef{Element: elem, Index: index}, nil
}

// ParseCircleRef parses a bare element id into a CircleRef.
func ParseCircleRef(s string) (sketch.CircleRef, error) {
	if s == "" || strings.Contains(s, ".") {
		return sketch.CircleRef{}, fmt.Errorf("circle ref %q: want a bare element id", s)
	}
	return sketch.CircleRef{Element: s}, nil
}

// splitRole separates a trailing index from a role name, e.g.
// "corner2" -> (corner, 2). A bare role has index 0.
func splitRole(s string) (sketch.Role, int, error) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == 0 {
		return "", 0, fmt.Errorf("missing role name")
	}
	if i == len(s) {
		return sketch.Role(s), 0, nil
	}
	index, err := strconv.Atoi(s[i:])
	if err != nil {
		return "", 0, fmt.Errorf("bad index %q", s[i:])
	}
	return sketch.Role(s[:i]), index, nil
}
