package store

import (
	"encoding/json"
	"fmt"

	"github.com/planarcad/planar/internal/sketch"
)

// Storage serialization is plain encoding/json: the store only needs a
// faithful round trip, not a canonical byte form. Canonical JSON (and
// the doc_hash column derived from it) lives in internal/sketch.

// constraintRefs is the refs-column shape: the constraint's selectors
// without id, type, or value, which have their own columns.
type constraintRefs struct {
	Points  []sketch.PointRef  `json:"points,omitempty"`
	Lines   []sketch.LineRef   `json:"lines,omitempty"`
	Circles []sketch.CircleRef `json:"circles,omitempty"`
}

func marshalGeometry(e sketch.Element) (string, error) {
	// Strip the column-backed fields so the geometry blob holds only
	// kind-specific data.
	e.ID = ""
	e.Kind = ""
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal geometry: %w", err)
	}
	return string(b), nil
}

func unmarshalGeometry(id string, kind string, data string) (sketch.Element, error) {
	var e sketch.Element
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return sketch.Element{}, fmt.Errorf("unmarshal geometry for element %q: %w", id, err)
	}
	e.ID = id
	e.Kind = sketch.ElementKind(kind)
	return e, nil
}

func marshalRefs(c sketch.Constraint) (string, error) {
	refs := constraintRefs{
		Points:  c.Points,
		Lines:   c.Lines,
		Circles: c.Circles,
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("marshal refs: %w", err)
	}
	return string(b), nil
}

func unmarshalRefs(id string, data string) (constraintRefs, error) {
	var refs constraintRefs
	if err := json.Unmarshal([]byte(data), &refs); err != nil {
		return constraintRefs{}, fmt.Errorf("unmarshal refs for constraint %q: %w", id, err)
	}
	return refs, nil
}
