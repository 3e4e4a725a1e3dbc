// Package store provides durable SQLite storage for sketches and their
// solve history.
//
// Layout:
//
//	sketches    - one row per sketch: name, current revision, validity
//	elements    - the sketch's elements, geometry as JSON, in draw order
//	constraints - declared constraints, selector refs as JSON
//	solves      - one row per committed solve cycle, keyed by revision
//
// The engine is the only writer; WAL mode keeps reads (CLI inspection,
// solve history queries) concurrent with engine writes. Documents are
// saved whole: SaveDocument replaces the element and constraint rows in
// one transaction, so readers never observe a half-written sketch.
package store
