package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planarcad/planar/internal/sketch"
)

func TestRun_SatisfiedScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/beam-length.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "failures: %v", result.Failures)
	assert.Empty(t, result.Failures)
	assert.True(t, result.Solve.Converged)

	// An already-satisfied sketch converges before the first step and
	// the geometry comes back bit-exact.
	assert.Equal(t, 0, result.Solve.Iterations)
	require.Len(t, result.Document.Elements, 1)
	assert.Equal(t, 100.0, result.Document.Elements[0].End.X)
	assert.Equal(t, 0.0, result.Document.Elements[0].End.Y)
}

func TestRun_UnsatisfiedDimension(t *testing.T) {
	scenario := &Scenario{
		Name:        "beam-stretch",
		Description: "Stretches the beam to a longer dimension",
		Sketch:      "testdata/sketches/beam.cue",
		Constraints: []ConstraintStep{
			{Type: "distance", Points: []string{"a.start", "a.end"}, Value: sketch.Float(120)},
		},
		Assertions: []Assertion{
			{Type: AssertConverged},
			{Type: AssertPointAt, Point: "a.start", X: 0, Y: 0},
			{Type: AssertDistanceBetween, Points: []string{"a.start", "a.end"}, Value: 120, Tolerance: 0.01},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "failures: %v", result.Failures)
	assert.Greater(t, result.Solve.Iterations, 0)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "beam-wrong",
		Description: "Asserts the wrong endpoint position",
		Sketch:      "testdata/sketches/beam.cue",
		Assertions: []Assertion{
			{Type: AssertPointAt, Point: "a.end", X: 5, Y: 5},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "a.end")
}

func TestRun_UnknownConstraintType(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad-constraint",
		Description: "Uses a constraint type the solver does not know",
		Sketch:      "testdata/sketches/beam.cue",
		Constraints: []ConstraintStep{
			{Type: "weld", Points: []string{"a.start", "a.end"}},
		},
		Assertions: []Assertion{
			{Type: AssertConverged},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown constraint type")
}

func TestRun_DanglingRef(t *testing.T) {
	scenario := &Scenario{
		Name:        "ghost-ref",
		Description: "References an element the sketch does not contain",
		Sketch:      "testdata/sketches/beam.cue",
		Constraints: []ConstraintStep{
			{Type: "distance", Points: []string{"a.start", "ghost.end"}, Value: sketch.Float(10)},
		},
		Assertions: []Assertion{
			{Type: AssertConverged},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")
}

func TestRun_MissingSketchFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "no-sketch",
		Description: "Points at a sketch file that does not exist",
		Sketch:      "testdata/sketches/nope.cue",
		Assertions: []Assertion{
			{Type: AssertConverged},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sketch file")
}
