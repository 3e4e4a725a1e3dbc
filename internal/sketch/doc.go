// Package sketch defines the persistent model of a 2D parametric sketch:
// the element variants a user can draw, the constraint vocabulary that
// relates them, and the document that owns both.
//
// DESIGN:
//
// Elements are a tagged union: a Kind discriminator plus the variant fields
// that kind uses. Every switch over Kind in this module and its consumers is
// exhaustive - adding a kind without updating a switch is a bug, and
// validation rejects unknown kinds at the boundary.
//
// Constraints are declarative and reference geometry indirectly, through
// (element, role, index) triples rather than coordinates. The solver-side
// primitives they bind to are rebuilt from the elements on every solve, so
// a constraint survives arbitrary edits to the geometry it names as long as
// the referenced element and role still exist.
//
// Identity:
//
// Documents have content-addressed revision identity. Canonical JSON
// (UTF-16 sorted keys, NFC strings, no HTML escaping, shortest round-trip
// floats) feeds a domain-separated SHA-256, so two documents with the same
// geometry and constraints hash identically regardless of map iteration
// order or source formatting.
package sketch
