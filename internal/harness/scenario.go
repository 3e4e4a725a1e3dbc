package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a solver conformance scenario: a sketch, extra
// constraints layered on top, and assertions against the solved result.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Sketch is the path to the CUE sketch file, relative to the
	// scenario file location.
	Sketch string `yaml:"sketch"`

	// Constraints are added to the compiled document before solving,
	// using the same string ref syntax as sketch documents.
	Constraints []ConstraintStep `yaml:"constraints,omitempty"`

	// Assertions validate the solved geometry.
	Assertions []Assertion `yaml:"assertions"`
}

// ConstraintStep is one constraint to add before solving.
type ConstraintStep struct {
	Type    string   `yaml:"type"`
	Points  []string `yaml:"points,omitempty"`
	Lines   []string `yaml:"lines,omitempty"`
	Circles []string `yaml:"circles,omitempty"`
	Value   *float64 `yaml:"value,omitempty"`
}

// Assertion validates one property of the solved document.
type Assertion struct {
	// Type is one of converged, point_at, distance_between,
	// radius_at_least.
	Type string `yaml:"type"`

	// Point names the point for point_at, e.g. "a.end".
	Point string `yaml:"point,omitempty"`

	// Points names the two points for distance_between.
	Points []string `yaml:"points,omitempty"`

	// Circle names the element for radius_at_least.
	Circle string `yaml:"circle,omitempty"`

	// X, Y are the expected coordinates for point_at.
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`

	// Value is the expected distance or the radius floor.
	Value float64 `yaml:"value,omitempty"`

	// Tolerance overrides the default 1e-3 comparison tolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertConverged       = "converged"
	AssertPointAt         = "point_at"
	AssertDistanceBetween = "distance_between"
	AssertRadiusAtLeast   = "radius_at_least"
)

// DefaultTolerance is the comparison tolerance when an assertion does
// not set its own.
const DefaultTolerance = 1e-3

// LoadScenario reads and parses a scenario YAML file, resolving the
// sketch path relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Sketch != "" && !filepath.IsAbs(scenario.Sketch) {
		scenario.Sketch = filepath.Join(filepath.Dir(path), scenario.Sketch)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Sketch == "" {
		return fmt.Errorf("sketch is required")
	}
	if _, err := os.Stat(s.Sketch); os.IsNotExist(err) {
		return fmt.Errorf("sketch file not found: %s", s.Sketch)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Constraints {
		if step.Type == "" {
			return fmt.Errorf("constraints[%d]: type is required", i)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertConverged:
		// No fields required.
	case AssertPointAt:
		if a.Point == "" {
			return fmt.Errorf("assertions[%d]: point is required for point_at", index)
		}
	case AssertDistanceBetween:
		if len(a.Points) != 2 {
			return fmt.Errorf("assertions[%d]: exactly two points are required for distance_between", index)
		}
	case AssertRadiusAtLeast:
		if a.Circle == "" {
			return fmt.Errorf("assertions[%d]: circle is required for radius_at_least", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}
	return nil
}
