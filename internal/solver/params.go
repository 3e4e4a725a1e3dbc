package solver

// Default solver tuning. These are deliberate, tested values, not knobs to
// sweep: the damping and stiffness interact with the finite-difference
// step, and the tolerance matches the write-back precision downstream.
const (
	// DefaultMaxIterations bounds worst-case solve cost.
	DefaultMaxIterations = 50

	// DefaultTolerance is the RMS residual below which the system counts
	// as solved.
	DefaultTolerance = 1e-4

	// DefaultDamping is the Levenberg-Marquardt λ added to the normal
	// equation diagonal.
	DefaultDamping = 0.01

	// DefaultStep is the forward finite-difference perturbation.
	DefaultStep = 1e-4

	// DefaultAngularStiffness scales angular residuals so a one-degree
	// error competes with a one-unit length error.
	DefaultAngularStiffness = 100

	// DefaultMinRadius is the floor applied to every circle radius after
	// each update, preventing collapse through zero.
	DefaultMinRadius = 0.1
)

// Params carries every tunable of one solve. A zero Params is not valid;
// start from DefaultParams. Passing Params explicitly keeps the solver
// stateless, so concurrent solves over distinct arenas cannot interfere.
type Params struct {
	MaxIterations    int
	Tolerance        float64
	Damping          float64
	Step             float64
	AngularStiffness float64
	MinRadius        float64
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		MaxIterations:    DefaultMaxIterations,
		Tolerance:        DefaultTolerance,
		Damping:          DefaultDamping,
		Step:             DefaultStep,
		AngularStiffness: DefaultAngularStiffness,
		MinRadius:        DefaultMinRadius,
	}
}

// Result reports how a solve ended.
type Result struct {
	// Iterations is the number of update steps applied.
	Iterations int `json:"iterations"`

	// Residual is the final RMS residual.
	Residual float64 `json:"residual"`

	// Converged is true when the residual dropped below the tolerance.
	Converged bool `json:"converged"`

	// Diverged is true when an update produced NaN and the iteration was
	// aborted. The last valid state is kept.
	Diverged bool `json:"diverged,omitempty"`
}
