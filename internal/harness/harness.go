package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/planarcad/planar/internal/compiler"
	"github.com/planarcad/planar/internal/engine"
	"github.com/planarcad/planar/internal/sketch"
	"github.com/planarcad/planar/internal/solver"
)

// Result holds the outcome of one scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Failures lists each assertion that did not hold.
	Failures []string

	// Document is the solved document.
	Document *sketch.Document

	// Solve is the solver's convergence report.
	Solve solver.Result
}

// Run executes a scenario: compile the sketch, add the scenario's
// constraints, solve, and evaluate the assertions.
//
// Execution is fully deterministic - the solver is pure and scenario
// constraints get positional ids - so a scenario produces byte-identical
// solved documents across runs.
func Run(scenario *Scenario) (*Result, error) {
	doc, err := loadSketchFile(scenario.Sketch)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Constraints {
		c, err := buildConstraint(i, step)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		doc.Constraints = append(doc.Constraints, c)
	}

	if errs := sketch.Validate(doc); len(errs) > 0 {
		return nil, fmt.Errorf("scenario %q: invalid document: %w", scenario.Name, errs[0])
	}

	solved, res, err := engine.SolveDocument(doc, solver.DefaultParams())
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	result := &Result{Pass: true, Document: solved, Solve: res}
	for i, a := range scenario.Assertions {
		if msg := evalAssertion(i, a, solved, res); msg != "" {
			result.Pass = false
			result.Failures = append(result.Failures, msg)
		}
	}
	return result, nil
}

// loadSketchFile compiles a CUE sketch file to a document.
func loadSketchFile(path string) (*sketch.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sketch file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	sketchVal := v.LookupPath(cue.ParsePath("sketch"))
	if !sketchVal.Exists() {
		return nil, fmt.Errorf("%s has no top-level sketch value", path)
	}
	return compiler.CompileSketch(sketchVal)
}

// buildConstraint turns a scenario constraint step into a document
// constraint with a positional id.
func buildConstraint(i int, step ConstraintStep) (sketch.Constraint, error) {
	c := sketch.Constraint{
		ID:    fmt.Sprintf("scenario-%s-%d", step.Type, i),
		Type:  sketch.ConstraintType(step.Type),
		Value: step.Value,
	}
	if !sketch.ValidConstraintTypes[c.Type] {
		return sketch.Constraint{}, fmt.Errorf("constraints[%d]: unknown constraint type %q", i, step.Type)
	}

	for _, s := range step.Points {
		ref, err := compiler.ParsePointRef(s)
		if err != nil {
			return sketch.Constraint{}, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		c.Points = append(c.Points, ref)
	}
	for _, s := range step.Lines {
		ref, err := compiler.ParseLineRef(s)
		if err != nil {
			return sketch.Constraint{}, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		c.Lines = append(c.Lines, ref)
	}
	for _, s := range step.Circles {
		ref, err := compiler.ParseCircleRef(s)
		if err != nil {
			return sketch.Constraint{}, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		c.Circles = append(c.Circles, ref)
	}
	return c, nil
}
