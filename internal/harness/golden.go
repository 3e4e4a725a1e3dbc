package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/planarcad/planar/internal/sketch"
)

// RunWithGolden executes a scenario and compares the solved document
// against a golden file. The golden file is the canonical JSON of the
// solved document, stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files pin the exact solved geometry, not just the assertion
// outcomes: any change to the solver's numerics shows up as a golden
// diff even when the assertions still hold.
//
// Returns error if scenario execution or serialization fails. Assertion
// failures and golden mismatches are reported through t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, f := range result.Failures {
		t.Error(f)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-run result's solved document against
// a golden file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := sketch.CanonicalJSON(result.Document)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
