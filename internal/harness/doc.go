// Package harness provides scenario-driven conformance testing for the
// sketch solver.
//
// A scenario names a CUE sketch file, optional constraints to add on top
// of it, and assertions against the solved geometry.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	sketch: sketches/bracket.cue
//	constraints:
//	  - type: distance
//	    points: [a.start, a.end]
//	    value: 120
//	assertions:
//	  - type: converged
//	  - type: point_at
//	    point: a.end
//	    x: 120
//	    y: 0
//
// # Assertion Types
//
//   - converged: the solve converged within the iteration cap
//   - point_at: a named point lands at (x, y) within tolerance
//   - distance_between: two named points end up a given distance apart
//   - radius_at_least: a circle's solved radius respects a floor
//
// Tolerance defaults to 1e-3, matching the solver's convergence
// precision; assertions may override it per check.
//
// # Golden Snapshots
//
// RunWithGolden solves the scenario and compares the solved document's
// canonical JSON against testdata/golden/{name}.golden. Canonical form
// makes snapshots byte-stable across runs. Regenerate with:
//
//	go test ./internal/harness -update
package harness
