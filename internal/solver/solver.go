package solver

import (
	"math"

	"github.com/planarcad/planar/internal/prim"
	"github.com/planarcad/planar/internal/sketch"
)

// Solve runs the damped Gauss-Newton iteration over the arena until the
// constraints are satisfied within tolerance, the iteration cap is hit,
// or an update diverges. The arena's point positions and circle radii are
// updated in place; fixed points keep their exact input coordinates.
//
// With no constraints the arena is returned untouched and the result
// reports immediate convergence.
//
// An error means the constraint set could not be bound to the arena
// (an unresolved ref or illegal selector) - a sketch-level fault that
// callers surface to the user rather than a numeric failure.
func Solve(a *prim.Arena, constraints []sketch.Constraint, p Params) (Result, error) {
	if len(constraints) == 0 {
		return Result{Converged: true}, nil
	}

	bindings, err := bindAll(a, constraints)
	if err != nil {
		return Result{}, err
	}
	markFixed(a, bindings)

	s := newSystem(a, bindings, p)
	res := s.run()
	s.writeBack()
	return res, nil
}

func (s *system) run() Result {
	var res Result

	s.chooseModes()
	r := s.residuals(nil)
	res.Residual = rms(r)

	for res.Iterations < s.p.MaxIterations {
		if res.Residual < s.p.Tolerance {
			res.Converged = true
			return res
		}

		jac := s.jacobian(r)
		a, b := s.normalEquations(jac, r)
		dx := solveLinear(a, b)
		if hasNaN(dx) {
			res.Diverged = true
			return res
		}

		for i := range s.x {
			s.x[i] += dx[i]
		}
		s.clampRadii()
		res.Iterations++

		s.chooseModes()
		r = s.residuals(r)
		res.Residual = rms(r)
	}

	res.Converged = res.Residual < s.p.Tolerance
	return res
}

// jacobian builds ∂R/∂X by forward finite differences against the
// already-evaluated residual vector r0. Fixed variables keep zero
// columns; their rows are forced to identity later.
func (s *system) jacobian(r0 []float64) [][]float64 {
	m := len(r0)
	n := len(s.x)

	jac := make([][]float64, m)
	for i := range jac {
		jac[i] = make([]float64, n)
	}

	for j := 0; j < n; j++ {
		if s.fixed[j] {
			continue
		}
		orig := s.x[j]
		s.x[j] = orig + s.p.Step
		s.scratch = s.residuals(s.scratch)
		s.x[j] = orig

		for i := 0; i < m; i++ {
			jac[i][j] = (s.scratch[i] - r0[i]) / s.p.Step
		}
	}
	return jac
}

// normalEquations forms (JᵀJ + λI) and −JᵀR. Rows of fixed variables are
// overridden to identity with a zero right-hand side, pinning ΔX to zero
// for them exactly.
func (s *system) normalEquations(jac [][]float64, r []float64) ([][]float64, []float64) {
	m := len(r)
	n := len(s.x)

	a := make([][]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			for k := 0; k < m; k++ {
				sum += jac[k][i] * jac[k][j]
			}
			a[i][j] = sum
			a[j][i] = sum
		}
		a[i][i] += s.p.Damping

		var sum float64
		for k := 0; k < m; k++ {
			sum += jac[k][i] * r[k]
		}
		b[i] = -sum
	}

	for i := 0; i < n; i++ {
		if !s.fixed[i] {
			continue
		}
		for j := 0; j < n; j++ {
			a[i][j] = 0
		}
		a[i][i] = 1
		b[i] = 0
	}
	return a, b
}

// clampRadii floors every radius variable after an update.
func (s *system) clampRadii() {
	for j := 0; j < len(s.arena.Circles); j++ {
		idx := 2*s.np + j
		if s.x[idx] < s.p.MinRadius {
			s.x[idx] = s.p.MinRadius
		}
	}
}

// writeBack copies the state vector into the arena. Fixed points are
// skipped so their coordinates stay bit-identical to the input.
func (s *system) writeBack() {
	for i := range s.arena.Points {
		if s.arena.Points[i].Fixed {
			continue
		}
		s.arena.Points[i].Pos.X = s.x[2*i]
		s.arena.Points[i].Pos.Y = s.x[2*i+1]
	}
	for j := range s.arena.Circles {
		s.arena.Circles[j].Radius = s.x[2*s.np+j]
	}
}

func rms(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	var sum float64
	for _, v := range r {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(r)))
}

func hasNaN(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) {
			return true
		}
	}
	return false
}
