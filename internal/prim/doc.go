// Package prim defines the solver-side view of a sketch: flat arenas of
// points, lines, and circles addressed by typed integer handles, plus the
// extraction pass that builds them from sketch elements.
//
// LIFECYCLE:
//
// Arenas are ephemeral. Extract builds a fresh arena at the start of every
// solve cycle, the solver mutates it, write-back reads it, and then it is
// discarded. Nothing is cached across cycles, so elements can be edited
// freely between solves without invalidation bookkeeping.
//
// IDENTITY:
//
// Every point is identified by (owner element, role, index). An allocation
// table maps that triple to a handle exactly once per arena, so each
// distinct point of an element - all four rectangle corners, every spline
// control vertex - gets its own solver variable. Elements that merely
// touch spatially are NOT merged here; spatial coincidence is a constraint
// concern, inferred by internal/autocon.
//
// Extraction order is element order, and within an element a fixed
// per-kind order. The solver's state vector layout follows arena order, so
// identical documents extract to identical variable layouts.
package prim
