package sketch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/planarcad/planar/internal/geom"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future format migration without colliding with old hashes.
const (
	domainDocument   = "planar/document/v1"
	domainConstraint = "planar/constraint/v1"
)

// hashWithDomain computes SHA-256 over domain + 0x00 + data. The null
// separator removes any ambiguity about where the domain ends.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash computes the content-addressed revision identity of a
// document. Two documents with identical names, element geometry (in
// order), and constraints hash identically regardless of how they were
// produced. Returns an error only if geometry contains non-finite values.
func DocumentHash(doc *Document) (string, error) {
	data, err := MarshalCanonical(doc.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("document hash: %w", err)
	}
	return hashWithDomain(domainDocument, data), nil
}

// ConstraintHash computes a stable identity for a constraint's content,
// ignoring its assigned ID. Used to recognize an equivalent constraint
// regardless of which session created it.
func ConstraintHash(c Constraint) (string, error) {
	m := c.canonicalMap()
	delete(m, "id")
	data, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("constraint hash: %w", err)
	}
	return hashWithDomain(domainConstraint, data), nil
}

// CanonicalJSON serializes a document to canonical JSON. This is the
// representation golden tests snapshot and the store persists.
func CanonicalJSON(doc *Document) ([]byte, error) {
	return MarshalCanonical(doc.canonicalMap())
}

func (d *Document) canonicalMap() map[string]any {
	elements := make([]any, len(d.Elements))
	for i, e := range d.Elements {
		elements[i] = e.canonicalMap()
	}
	m := map[string]any{
		"name":     d.Name,
		"elements": elements,
	}
	if len(d.Constraints) > 0 {
		constraints := make([]any, len(d.Constraints))
		for i, c := range d.Constraints {
			constraints[i] = c.canonicalMap()
		}
		m["constraints"] = constraints
	}
	return m
}

func vecMap(v geom.Vec2) map[string]any {
	return map[string]any{"x": v.X, "y": v.Y}
}

func (e Element) canonicalMap() map[string]any {
	m := map[string]any{
		"id":   e.ID,
		"kind": string(e.Kind),
	}
	switch e.Kind {
	case KindLine:
		m["start"] = vecMap(e.Start)
		m["end"] = vecMap(e.End)
	case KindHLine, KindVLine:
		m["start"] = vecMap(e.Start)
		m["length"] = e.Length
	case KindRectangle:
		m["origin"] = vecMap(e.Origin)
		m["width"] = e.Width
		m["height"] = e.Height
	case KindCircle:
		m["center"] = vecMap(e.Center)
		m["radius"] = e.Radius
	case KindArc:
		m["center"] = vecMap(e.Center)
		m["radius"] = e.Radius
		m["start_angle"] = e.StartAngle
		m["end_angle"] = e.EndAngle
	case KindSpline:
		controls := make([]any, len(e.Controls))
		for i, c := range e.Controls {
			controls[i] = vecMap(c)
		}
		m["controls"] = controls
	}
	return m
}

func (c Constraint) canonicalMap() map[string]any {
	m := map[string]any{
		"id":   c.ID,
		"type": string(c.Type),
	}
	if len(c.Points) > 0 {
		points := make([]any, len(c.Points))
		for i, r := range c.Points {
			p := map[string]any{"element": r.Element, "role": string(r.Role)}
			if r.Index != 0 {
				p["index"] = r.Index
			}
			points[i] = p
		}
		m["points"] = points
	}
	if len(c.Lines) > 0 {
		lines := make([]any, len(c.Lines))
		for i, r := range c.Lines {
			l := map[string]any{"element": r.Element}
			if r.Index != 0 {
				l["index"] = r.Index
			}
			lines[i] = l
		}
		m["lines"] = lines
	}
	if len(c.Circles) > 0 {
		circles := make([]any, len(c.Circles))
		for i, r := range c.Circles {
			circles[i] = map[string]any{"element": r.Element}
		}
		m["circles"] = circles
	}
	if c.Value != nil {
		m["value"] = *c.Value
	}
	return m
}
