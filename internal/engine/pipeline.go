package engine

import (
	"fmt"

	"github.com/planarcad/planar/internal/apply"
	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
	"github.com/planarcad/planar/internal/solver"
)

// SolveDocument runs one full solve cycle over a document: extract
// primitives, solve the constraints, and write positions back onto a
// copy of the elements. The input document is not modified.
//
// An error means extraction or constraint binding failed; the document
// is then unusable as-is and callers should surface the reason. A
// diverged or non-converged solve is NOT an error - the returned
// document carries the best state reached and the result says how the
// solve ended.
func SolveDocument(doc *sketch.Document, params solver.Params) (*sketch.Document, solver.Result, error) {
	arena, err := prim.Extract(doc.Elements)
	if err != nil {
		return nil, solver.Result{}, fmt.Errorf("solve %q: %w", doc.Name, err)
	}

	res, err := solver.Solve(arena, doc.Constraints, params)
	if err != nil {
		return nil, res, fmt.Errorf("solve %q: %w", doc.Name, err)
	}

	out := doc.Clone()
	out.Elements = apply.Apply(doc.Elements, arena)
	return out, res, nil
}
